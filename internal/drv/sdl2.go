//go:build sdl2

package drv

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"ngui/internal/gui"
	"ngui/internal/logging"
)

// Backend hosts the UI in an SDL2 window for development machines. Display
// output goes through a streaming RGB565 texture; mouse and keyboard are
// synthesized from the SDL event queue.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pixelBuf []byte

	mouseX, mouseY int
	mousePressed   bool
	keyQueue       []keyEvent
	lastKey        uint32
	quit           bool
}

type keyEvent struct {
	key     uint32
	pressed bool
}

// New prepares the SDL2 backend.
func New(opts Options) *Backend {
	_ = opts // windowed backend; device paths do not apply
	return &Backend{}
}

func (b *Backend) Name() string { return "sdl2" }

// RawInputPath reports no raw pump device; SDL owns the host input queue.
func (b *Backend) RawInputPath() (string, bool) { return "", false }

// QuitRequested reports whether the hosting window asked to close.
func (b *Backend) QuitRequested() bool { return b.quit }

// InitDisplay creates the window and a double draw buffer of 100 rows per
// half. The desktop display mode is queried only to warn when it differs
// from the configured constants.
func (b *Backend) InitDisplay(ctx *gui.Context) (*gui.Display, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("drv: sdl init: %w", err)
	}

	if mode, err := sdl.GetDesktopDisplayMode(0); err != nil {
		logging.Warn("sdl desktop display mode query failed", zap.Error(err))
	} else {
		bpp, _, _, _, _, merr := sdl.PixelFormatEnumToMasks(uint(mode.Format))
		if merr != nil {
			bpp = 0
		}
		logging.Debug("sdl desktop display mode",
			zap.Int32("w", mode.W), zap.Int32("h", mode.H), zap.Int("bpp", bpp))
		verifyMode("sdl", int(mode.W), int(mode.H), bpp)
	}

	window, err := sdl.CreateWindow(WindowTitle,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, HorRes, VerRes, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("drv: sdl create window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, fmt.Errorf("drv: sdl create renderer: %w", err)
	}
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB565, sdl.TEXTUREACCESS_STREAMING, HorRes, VerRes)
	if err != nil {
		return nil, fmt.Errorf("drv: sdl create texture: %w", err)
	}
	b.window, b.renderer, b.texture = window, renderer, texture
	b.pixelBuf = make([]byte, winBufPixels*2)

	buf, err := gui.NewDrawBuf(make([]gui.Color, winBufPixels), make([]gui.Color, winBufPixels))
	if err != nil {
		return nil, err
	}
	disp, err := ctx.RegisterDisplay(gui.DisplayDriver{
		HorRes:       HorRes,
		VerRes:       VerRes,
		Buf:          buf,
		Flush:        b.flush,
		Antialiasing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("drv: register sdl display: %w", err)
	}
	return disp, nil
}

// flush uploads one tile into the streaming texture and presents the frame.
func (b *Backend) flush(area gui.Area, pixels []gui.Color) {
	n := len(pixels)
	for i, c := range pixels {
		b.pixelBuf[2*i] = byte(c)
		b.pixelBuf[2*i+1] = byte(c >> 8)
	}
	rect := &sdl.Rect{X: int32(area.X1), Y: int32(area.Y1), W: int32(area.W()), H: int32(area.H())}
	if err := b.texture.Update(rect, b.pixelBuf[:2*n], area.W()*2); err != nil {
		logging.Warn("sdl texture update failed", zap.Error(err))
		return
	}
	_ = b.renderer.Copy(b.texture, nil, nil)
	b.renderer.Present()
}

// InitInput registers the mouse as a pointer device, creates the default
// focus group and registers the keyboard as a keypad device in that group.
// Any registration failure aborts startup.
func (b *Backend) InitInput(ctx *gui.Context) error {
	if _, err := ctx.RegisterIndev(gui.IndevDriver{Type: gui.IndevPointer, Read: b.mouseRead}); err != nil {
		return fmt.Errorf("drv: register sdl mouse: %w", err)
	}

	g := ctx.NewGroup()
	ctx.SetDefaultGroup(g)

	kb, err := ctx.RegisterIndev(gui.IndevDriver{Type: gui.IndevKeypad, Read: b.keyboardRead})
	if err != nil {
		return fmt.Errorf("drv: register sdl keyboard: %w", err)
	}
	kb.SetGroup(g)
	return nil
}

// mouseRead pumps the SDL event queue and reports the current pointer
// state. It is registered first, so each PollInput pass pumps exactly once.
func (b *Backend) mouseRead(data *gui.IndevData) {
	b.pumpEvents()
	data.Point = gui.Point{X: b.mouseX, Y: b.mouseY}
	if b.mousePressed {
		data.State = gui.StatePressed
	} else {
		data.State = gui.StateReleased
	}
}

// keyboardRead pops one queued key transition per poll.
func (b *Backend) keyboardRead(data *gui.IndevData) {
	if len(b.keyQueue) == 0 {
		data.Key = b.lastKey
		data.State = gui.StateReleased
		return
	}
	ev := b.keyQueue[0]
	b.keyQueue = b.keyQueue[1:]
	b.lastKey = ev.key
	data.Key = ev.key
	if ev.pressed {
		data.State = gui.StatePressed
	} else {
		data.State = gui.StateReleased
	}
}

func (b *Backend) pumpEvents() {
	for {
		event := sdl.PollEvent()
		if event == nil {
			return
		}
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			b.quit = true
		case *sdl.MouseMotionEvent:
			b.mouseX, b.mouseY = int(ev.X), int(ev.Y)
		case *sdl.MouseButtonEvent:
			if ev.Button == sdl.BUTTON_LEFT {
				b.mouseX, b.mouseY = int(ev.X), int(ev.Y)
				b.mousePressed = ev.State == sdl.PRESSED
			}
		case *sdl.KeyboardEvent:
			if key, ok := mapKeycode(ev.Keysym.Sym); ok {
				b.keyQueue = append(b.keyQueue, keyEvent{key: key, pressed: ev.Type == sdl.KEYDOWN})
			}
		}
	}
}

// mapKeycode translates SDL keycodes to the toolkit's navigation keys;
// printable ASCII passes through.
func mapKeycode(sym sdl.Keycode) (uint32, bool) {
	switch sym {
	case sdl.K_UP:
		return gui.KeyUp, true
	case sdl.K_DOWN:
		return gui.KeyDown, true
	case sdl.K_LEFT:
		return gui.KeyLeft, true
	case sdl.K_RIGHT:
		return gui.KeyRight, true
	case sdl.K_RETURN, sdl.K_KP_ENTER:
		return gui.KeyEnter, true
	case sdl.K_ESCAPE:
		return gui.KeyEsc, true
	case sdl.K_TAB:
		return gui.KeyNext, true
	case sdl.K_BACKSPACE:
		return gui.KeyBackspace, true
	case sdl.K_DELETE:
		return gui.KeyDel, true
	case sdl.K_HOME:
		return gui.KeyHome, true
	case sdl.K_END:
		return gui.KeyEnd, true
	}
	if sym >= ' ' && sym < 127 {
		return uint32(sym), true
	}
	return 0, false
}

// Close tears down the SDL objects; used by tests and error paths.
func (b *Backend) Close() error {
	if b.texture != nil {
		_ = b.texture.Destroy()
	}
	if b.renderer != nil {
		_ = b.renderer.Destroy()
	}
	if b.window != nil {
		_ = b.window.Destroy()
	}
	sdl.Quit()
	return nil
}

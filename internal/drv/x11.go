//go:build x11

package drv

import (
	"fmt"
	"image"
	"image/color"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"ngui/internal/gui"
)

// Backend hosts the UI in a plain X11 window via the pure-Go X protocol
// binding. Unlike the other backends it performs no display mode query at
// all; the window is simply created at the configured resolution. The
// hosting window system does not draw a cursor over the window, so one is
// attached to the pointer device as a cursor visual.
type Backend struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	window xproto.Window
	gc     xproto.Gcontext

	keysyms    []xproto.Keysym
	perKeycode byte
	minKeycode xproto.Keycode

	pixelBuf []byte

	pointerX, pointerY int
	pointerPressed     bool
	keyQueue           []keyEvent
	lastKey            uint32
	quit               bool
}

type keyEvent struct {
	key     uint32
	pressed bool
}

// New prepares the X11 backend.
func New(opts Options) *Backend {
	_ = opts // windowed backend; device paths do not apply
	return &Backend{}
}

func (b *Backend) Name() string { return "x11" }

// RawInputPath reports no raw pump device; input arrives over the X
// connection.
func (b *Backend) RawInputPath() (string, bool) { return "", false }

// QuitRequested reports whether the window was destroyed.
func (b *Backend) QuitRequested() bool { return b.quit }

// InitDisplay connects to the X server, creates the window at the
// configured resolution and registers the display with a double draw
// buffer of 100 rows per half.
func (b *Backend) InitDisplay(ctx *gui.Context) (*gui.Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("drv: x11 connect: %w", err)
	}
	b.conn = conn
	setup := xproto.Setup(conn)
	b.screen = setup.DefaultScreen(conn)

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, fmt.Errorf("drv: x11 window id: %w", err)
	}
	b.window = wid

	eventMask := uint32(xproto.EventMaskKeyPress |
		xproto.EventMaskKeyRelease |
		xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskStructureNotify)
	err = xproto.CreateWindowChecked(conn, b.screen.RootDepth, wid, b.screen.Root,
		0, 0, HorRes, VerRes, 0,
		xproto.WindowClassInputOutput, b.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{b.screen.BlackPixel, eventMask}).Check()
	if err != nil {
		return nil, fmt.Errorf("drv: x11 create window: %w", err)
	}
	xproto.ChangeProperty(conn, xproto.PropModeReplace, wid,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(WindowTitle)), []byte(WindowTitle))
	xproto.MapWindow(conn, wid)

	gcid, err := xproto.NewGcontextId(conn)
	if err != nil {
		return nil, fmt.Errorf("drv: x11 gcontext id: %w", err)
	}
	b.gc = gcid
	if err := xproto.CreateGCChecked(conn, gcid, xproto.Drawable(wid),
		xproto.GcForeground, []uint32{b.screen.BlackPixel}).Check(); err != nil {
		return nil, fmt.Errorf("drv: x11 create gc: %w", err)
	}

	kmap, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode,
		byte(setup.MaxKeycode-setup.MinKeycode+1)).Reply()
	if err != nil {
		return nil, fmt.Errorf("drv: x11 keyboard mapping: %w", err)
	}
	b.keysyms = kmap.Keysyms
	b.perKeycode = kmap.KeysymsPerKeycode
	b.minKeycode = setup.MinKeycode

	b.pixelBuf = make([]byte, winBufPixels*4)

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
		return nil, fmt.Errorf("drv: register x11 display: %w", err)
	}
	return disp, nil
}

// flush converts an RGB565 tile to the server's 32-bit ZPixmap layout and
// uploads it. Tiles are split so no single PutImage exceeds the core
// protocol request size limit.
func (b *Backend) flush(area gui.Area, pixels []gui.Color) {
	w := area.W()
	// ~3200 bytes per 800px row at 4 bytes per pixel; 60 rows stays well
	// under the 256KiB core request limit.
	const maxRows = 60
	for row := 0; row < area.H(); row += maxRows {
		rows := maxRows
		if row+rows > area.H() {
			rows = area.H() - row
		}
		src := pixels[row*w : (row+rows)*w]
		for i, c := range src {
			r := byte(c>>11) << 3
			g := byte(c>>5&0x3f) << 2
			bl := byte(c&0x1f) << 3
			b.pixelBuf[4*i] = bl
			b.pixelBuf[4*i+1] = g
			b.pixelBuf[4*i+2] = r
			b.pixelBuf[4*i+3] = 0
		}
		xproto.PutImage(b.conn, xproto.ImageFormatZPixmap, xproto.Drawable(b.window), b.gc,
			uint16(w), uint16(rows), int16(area.X1), int16(area.Y1+row), 0, b.screen.RootDepth,
			b.pixelBuf[:len(src)*4])
	}
}

// InitInput registers the pointer with a cursor visual, creates the default
// focus group and registers the keypad in it. Any failure aborts startup.
func (b *Backend) InitInput(ctx *gui.Context) error {
	ptr, err := ctx.RegisterIndev(gui.IndevDriver{Type: gui.IndevPointer, Read: b.pointerRead})
	if err != nil {
		return fmt.Errorf("drv: register x11 pointer: %w", err)
	}
	ptr.SetCursor(cursorImage())

	g := ctx.NewGroup()
	ctx.SetDefaultGroup(g)

	kb, err := ctx.RegisterIndev(gui.IndevDriver{Type: gui.IndevKeypad, Read: b.keypadRead})
	if err != nil {
		return fmt.Errorf("drv: register x11 keypad: %w", err)
	}
	kb.SetGroup(g)
	return nil
}

// pointerRead pumps the X event queue and reports the pointer state. It is
// registered first, so each PollInput pass pumps exactly once.
func (b *Backend) pointerRead(data *gui.IndevData) {
	b.pumpEvents()
	data.Point = gui.Point{X: b.pointerX, Y: b.pointerY}
	if b.pointerPressed {
		data.State = gui.StatePressed
	} else {
		data.State = gui.StateReleased
	}
}

// keypadRead pops one queued key transition per poll.
func (b *Backend) keypadRead(data *gui.IndevData) {
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
		event, xerr := b.conn.PollForEvent()
		if event == nil && xerr == nil {
			return
		}
		if xerr != nil {
			continue
		}
		switch ev := event.(type) {
		case xproto.MotionNotifyEvent:
			b.pointerX, b.pointerY = int(ev.EventX), int(ev.EventY)
		case xproto.ButtonPressEvent:
			if ev.Detail == 1 {
				b.pointerX, b.pointerY = int(ev.EventX), int(ev.EventY)
				b.pointerPressed = true
			}
		case xproto.ButtonReleaseEvent:
			if ev.Detail == 1 {
				b.pointerPressed = false
			}
		case xproto.KeyPressEvent:
			if key, ok := b.mapKeycode(ev.Detail); ok {
				b.keyQueue = append(b.keyQueue, keyEvent{key: key, pressed: true})
			}
		case xproto.KeyReleaseEvent:
			if key, ok := b.mapKeycode(ev.Detail); ok {
				b.keyQueue = append(b.keyQueue, keyEvent{key: key, pressed: false})
			}
		case xproto.DestroyNotifyEvent:
			b.quit = true
		}
	}
}

// X11 keysym values from keysymdef.h for the navigation keys.
const (
	xkBackspace = 0xff08
	xkTab       = 0xff09
	xkReturn    = 0xff0d
	xkEscape    = 0xff1b
	xkHome      = 0xff50
	xkLeft      = 0xff51
	xkUp        = 0xff52
	xkRight     = 0xff53
	xkDown      = 0xff54
	xkEnd       = 0xff57
	xkKPEnter   = 0xff8d
	xkDelete    = 0xffff
)

// mapKeycode resolves a hardware keycode through the server's keyboard
// mapping and translates it to the toolkit's key space.
func (b *Backend) mapKeycode(kc xproto.Keycode) (uint32, bool) {
	idx := int(kc-b.minKeycode) * int(b.perKeycode)
	if idx < 0 || idx >= len(b.keysyms) {
		return 0, false
	}
	sym := uint32(b.keysyms[idx])
	switch sym {
	case xkUp:
		return gui.KeyUp, true
	case xkDown:
		return gui.KeyDown, true
	case xkLeft:
		return gui.KeyLeft, true
	case xkRight:
		return gui.KeyRight, true
	case xkReturn, xkKPEnter:
		return gui.KeyEnter, true
	case xkEscape:
		return gui.KeyEsc, true
	case xkTab:
		return gui.KeyNext, true
	case xkBackspace:
		return gui.KeyBackspace, true
	case xkDelete:
		return gui.KeyDel, true
	case xkHome:
		return gui.KeyHome, true
	case xkEnd:
		return gui.KeyEnd, true
	}
	if sym >= ' ' && sym < 127 {
		return sym, true
	}
	return 0, false
}

// cursorImage draws the small arrow attached to the pointer device.
func cursorImage() image.Image {
	const size = 12
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black := color.RGBA{A: 0xff}
	for y := 0; y < size; y++ {
		for x := 0; x <= y && x < size; x++ {
			img.Set(x, y, white)
		}
		img.Set(0, y, black)
		if y < size {
			img.Set(y, y, black)
		}
	}
	return img
}

// Close drops the X connection; used by tests and error paths.
func (b *Backend) Close() error {
	if b.conn != nil {
		b.conn.Close()
	}
	return nil
}

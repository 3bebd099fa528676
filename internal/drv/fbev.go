//go:build linux && !sdl2 && !x11

package drv

import (
	"fmt"

	"go.uber.org/zap"

	"ngui/internal/evdev"
	"ngui/internal/fbdev"
	"ngui/internal/gui"
	"ngui/internal/logging"
)

// Backend drives the appliance hardware: the Linux framebuffer for output
// and an evdev touch digitizer for input.
type Backend struct {
	opts    Options
	fb      *fbdev.Device
	pointer *evdev.Pointer
}

// New prepares the framebuffer backend. Nothing is opened until
// InitDisplay runs.
func New(opts Options) *Backend {
	if opts.FBPath == "" {
		opts.FBPath = fbdev.DefaultDevicePath
	}
	if opts.InputPath == "" {
		opts.InputPath = evdev.DefaultDevicePath
	}
	return &Backend{opts: opts}
}

// Name identifies the linked backend in logs and status output.
func (b *Backend) Name() string { return "fbev" }

// RawInputPath reports the device the host may additionally drain with the
// raw non-blocking pump. Only this backend has one.
func (b *Backend) RawInputPath() (string, bool) { return b.opts.InputPath, true }

// QuitRequested never fires on hardware; the appliance runs until the host
// shuts it down.
func (b *Backend) QuitRequested() bool { return false }

// InitDisplay opens and maps the framebuffer and registers the display with
// a single draw buffer of one tenth of a frame. A mode different from the
// configured constants is only a warning; failure to open or register is
// fatal, there is nothing to show without a display.
func (b *Backend) InitDisplay(ctx *gui.Context) (*gui.Display, error) {
	fb, err := fbdev.Open(b.opts.FBPath)
	if err != nil {
		return nil, err
	}
	b.fb = fb

	hor, ver, bpp := fb.Sizes()
	verifyMode("framebuffer", hor, ver, bpp)

	buf, err := gui.NewDrawBuf(make([]gui.Color, fbBufPixels), nil)
	if err != nil {
		return nil, err
	}
	disp, err := ctx.RegisterDisplay(gui.DisplayDriver{
		HorRes:       HorRes,
		VerRes:       VerRes,
		Buf:          buf,
		Flush:        fb.Flush,
		Antialiasing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("drv: register framebuffer display: %w", err)
	}
	return disp, nil
}

// InitInput creates the default focus group and registers the touch
// digitizer. There is no keypad on this hardware; the group is created
// anyway so keypad devices added later find a valid default.
//
// A digitizer that fails to open or register degrades to a touch-less UI
// with a warning rather than aborting startup: the screen still renders and
// the unit stays reachable over the network for diagnosis.
func (b *Backend) InitInput(ctx *gui.Context) error {
	g := ctx.NewGroup()
	ctx.SetDefaultGroup(g)

	ptr, err := evdev.NewPointer(b.opts.InputPath, HorRes, VerRes)
	if err != nil {
		logging.Warn("touch digitizer unavailable; continuing without input",
			zap.String("device", b.opts.InputPath), zap.Error(err))
		return nil
	}
	b.pointer = ptr

	if _, err := ctx.RegisterIndev(gui.IndevDriver{Type: gui.IndevPointer, Read: ptr.Read}); err != nil {
		logging.Warn("touch digitizer registration failed; continuing without input", zap.Error(err))
		_ = ptr.Close()
		b.pointer = nil
	}
	return nil
}

// Close releases the devices. Only used on error paths and in tests; on the
// appliance the handles live until process exit.
func (b *Backend) Close() error {
	if b.pointer != nil {
		_ = b.pointer.Close()
	}
	if b.fb != nil {
		return b.fb.Close()
	}
	return nil
}

// Command ngui runs the touchscreen UI shell of the appliance: it links
// exactly one display/input backend (framebuffer+evdev by default, SDL2 or
// X11 windows via build tags), registers the display and input devices,
// and drives the single-threaded cooperative loop that services timers,
// polls input, drains the raw activity pump and applies the screen power
// policy.
package main

import (
	"context"
	"flag"
	"image"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ngui/internal/config"
	"ngui/internal/drv"
	"ngui/internal/evdev"
	"ngui/internal/gui"
	"ngui/internal/logging"
	"ngui/internal/power"
	"ngui/internal/tick"
	"ngui/internal/web"
)

const version = "1.1.0"

// background is the splash color shown until the widget layer takes over
// rendering.
var background = gui.RGB(0x12, 0x12, 0x1a)

func main() {
	flags := parseFlags()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		// Logging is not up yet; this is the one place stderr is used raw.
		os.Stderr.WriteString("ngui: config load failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	if err := logging.Initialize(level); err != nil {
		os.Stderr.WriteString("ngui: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logging.Sync()

	logging.Info("ngui starting",
		zap.String("version", version),
		zap.String("config", flags.configPath),
		zap.Int("hor_res", drv.HorRes),
		zap.Int("ver_res", drv.VerRes),
		zap.Int("color_depth", drv.ColorDepth),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info("signal received, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		logging.Error("startup failed", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
	logging.Info("ngui exiting")
}

type flagConfig struct {
	configPath string
	logLevel   string
}

func parseFlags() flagConfig {
	var cfg flagConfig
	flag.StringVar(&cfg.configPath, "config", "/etc/ngui/config.yaml", "Path to config file")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level override (debug|info|warn|error)")
	flag.Parse()
	return cfg
}

func run(ctx context.Context, cfg *config.Config) error {
	gctx := gui.New(tick.Now)
	backend := drv.New(drv.Options{FBPath: cfg.FBDevice, InputPath: cfg.InputDevice})

	disp, err := backend.InitDisplay(gctx)
	if err != nil {
		return err
	}
	if err := backend.InitInput(gctx); err != nil {
		return err
	}
	logging.Info("backend initialized",
		zap.String("backend", backend.Name()),
		zap.Int("input_devices", len(gctx.Indevs())),
	)

	pm := power.NewManager(newBacklight(cfg), time.Duration(cfg.IdleTimeoutSec)*time.Second, tick.Now)
	if cfg.QuietHours.Off != "" && cfg.QuietHours.On != "" {
		sched, err := pm.Schedule(cfg.QuietHours.Off, cfg.QuietHours.On)
		if err != nil {
			return err
		}
		defer sched.Stop()
		logging.Info("quiet hours scheduled",
			zap.String("off", cfg.QuietHours.Off), zap.String("on", cfg.QuietHours.On))
	}

	// The raw pump is a second, independently owned descriptor on the touch
	// device; only the framebuffer backend has one. Its absence is a
	// degraded mode (no out-of-band activity detection), never fatal.
	pumpFD := evdev.Unopened
	if path, ok := backend.RawInputPath(); ok {
		fd, err := evdev.OpenPump(path)
		if err != nil {
			logging.Warn("activity pump unavailable", zap.Error(err))
		} else {
			pumpFD = fd
		}
	}
	defer evdev.ClosePump(pumpFD)

	var statusSnap atomic.Value
	statusSnap.Store(web.Status{Backend: backend.Name()})
	if cfg.StatusListen != "" {
		srv := web.NewServer(func() web.Status {
			return statusSnap.Load().(web.Status)
		})
		go func() {
			if err := srv.Serve(ctx, cfg.StatusListen); err != nil {
				logging.Warn("status endpoint stopped", zap.Error(err))
			}
		}()
	}

	// Splash redraw until the widget layer takes over; also refreshes the
	// status snapshot.
	gctx.NewTimer(500, func() {
		if pm.ScreenOn() {
			if err := disp.Fill(disp.Full(), background); err != nil {
				logging.Warn("splash render failed", zap.Error(err))
			}
			drawCursors(gctx, disp)
		}
		statusSnap.Store(web.Status{
			Backend:        backend.Name(),
			HorRes:         drv.HorRes,
			VerRes:         drv.VerRes,
			ColorDepth:     drv.ColorDepth,
			UptimeTicks:    tick.Now(),
			LastActivityMs: pm.LastActivityAge(),
			ScreenOn:       pm.ScreenOn(),
		})
	})

	// The cooperative loop. Nothing in here blocks: input descriptors are
	// non-blocking, the pump drains only what is buffered, and flush
	// callbacks copy and return.
	loop := time.NewTicker(5 * time.Millisecond)
	defer loop.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-loop.C:
			gctx.TimerHandler()
			gctx.PollInput()
			if evdev.Drain(pumpFD) {
				pm.Activity()
			}
			// Windowed backends have no raw pump; a pressed pointer is the
			// activity signal there.
			for _, in := range gctx.Indevs() {
				if in.Type() == gui.IndevPointer && in.State().State == gui.StatePressed {
					pm.Activity()
				}
			}
			pm.ApplyPending()
			pm.Tick()
			if backend.QuitRequested() {
				logging.Info("window closed, shutting down")
				return nil
			}
		}
	}
}

// newBacklight picks the configured backlight controller, falling back to
// the mock when none is configured or hardware setup fails.
func newBacklight(cfg *config.Config) power.Backlight {
	if cfg.Backlight.Sysfs != "" {
		b, err := power.NewSysfsBacklight(cfg.Backlight.Sysfs)
		if err == nil {
			return b
		}
		logging.Warn("sysfs backlight unavailable, using mock", zap.Error(err))
	}
	if cfg.Backlight.GPIO != "" {
		b, err := power.NewGPIOBacklight(cfg.Backlight.GPIO, cfg.Backlight.ActiveLow)
		if err == nil {
			return b
		}
		logging.Warn("gpio backlight unavailable, using mock", zap.Error(err))
	}
	return power.NewMockBacklight()
}

// drawCursors overlays the cursor visual of any pointer device that has
// one at its current position. Only the X11 backend attaches a cursor; the
// other backends either render on hardware with a finger for a pointer or
// get a cursor from the hosting window system.
func drawCursors(gctx *gui.Context, disp *gui.Display) {
	for _, in := range gctx.Indevs() {
		if in.Type() != gui.IndevPointer || in.Cursor() == nil {
			continue
		}
		blitImage(disp, in.Cursor(), in.State().Point)
	}
}

func blitImage(disp *gui.Display, img image.Image, at gui.Point) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	// Clip to the display.
	if at.X+w > disp.HorRes() {
		w = disp.HorRes() - at.X
	}
	if at.Y+h > disp.VerRes() {
		h = disp.VerRes() - at.Y
	}
	if w <= 0 || h <= 0 {
		return
	}
	pixels := make([]gui.Color, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				pixels[y*w+x] = background
				continue
			}
			pixels[y*w+x] = gui.RGB(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}
	area := gui.Area{X1: at.X, Y1: at.Y, X2: at.X + w - 1, Y2: at.Y + h - 1}
	if err := disp.Blit(area, pixels); err != nil {
		logging.Debug("cursor blit skipped", zap.Error(err))
	}
}

// Package drv selects and initializes exactly one display/input backend:
// the Linux framebuffer with an evdev touch digitizer (the appliance
// hardware, default build), an SDL2-hosted window (build tag "sdl2") or an
// X11-hosted window (build tag "x11").
//
// All three backends export the same surface: New(Options) *Backend with
// InitDisplay and InitInput methods. The choice is purely build-time; the
// host binary is backend-agnostic.
package drv

import (
	"go.uber.org/zap"

	"ngui/internal/logging"
)

// Display geometry and color depth of the whole pipeline. These are the
// source of truth for buffer sizing and driver registration; what the
// hardware or hosting window system reports is only checked against them
// for a warning, never adopted.
const (
	HorRes     = 800
	VerRes     = 480
	ColorDepth = 16
)

// Draw buffer sizing per backend class.
//
// The framebuffer backend renders through a single buffer of one tenth of a
// frame: partial refresh keeps memory low and suits the slow physical link.
// The windowed backends use two buffers of 100 display rows each for
// double-buffered rendering under a compositor.
const (
	fbBufPixels  = HorRes * VerRes / 10
	winBufPixels = HorRes * 100
)

// Options carries the device paths a backend may need. Zero values select
// the hardware defaults; the windowed backends ignore both fields.
type Options struct {
	// FBPath is the framebuffer device, e.g. /dev/fb0.
	FBPath string
	// InputPath is the touch digitizer event device, e.g. /dev/input/event0.
	InputPath string
}

// WindowTitle is used by the windowed development backends.
const WindowTitle = "nakamochi gui"

// verifyMode compares a reported display mode against the compile-time
// constants. A mismatch is logged at warning level and the configured
// constants stay in effect; reportedDepth of 0 skips the depth check.
func verifyMode(source string, reportedHor, reportedVer, reportedDepth int) bool {
	if reportedHor == HorRes && reportedVer == VerRes && (reportedDepth == 0 || reportedDepth == ColorDepth) {
		return true
	}
	logging.Warn("display mode mismatch; proceeding with configured mode",
		zap.String("source", source),
		zap.Int("reported_hor", reportedHor),
		zap.Int("reported_ver", reportedVer),
		zap.Int("reported_depth", reportedDepth),
		zap.Int("hor", HorRes),
		zap.Int("ver", VerRes),
		zap.Int("depth", ColorDepth),
	)
	return false
}

// Package power turns the touch-activity signal from the raw input pump
// into screen sleep/wake decisions and drives the panel backlight.
package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"ngui/internal/logging"
)

// Backlight switches the panel light on or off. Implementations exist for
// the sysfs backlight class, a raw GPIO enable pin, and a mock for
// development hosts with no controllable panel.
type Backlight interface {
	Set(on bool) error
}

// mockBacklight logs transitions instead of touching hardware.
type mockBacklight struct{}

// NewMockBacklight returns a Backlight suitable for the windowed
// development backends.
func NewMockBacklight() Backlight {
	return &mockBacklight{}
}

func (m *mockBacklight) Set(on bool) error {
	logging.Debug("mock backlight", zap.Bool("on", on))
	return nil
}

// sysfsBacklight drives /sys/class/backlight/<device>. Off writes zero
// brightness; on restores the device's maximum.
type sysfsBacklight struct {
	brightnessPath string
	max            int
}

// NewSysfsBacklight opens the named backlight device directory, e.g.
// /sys/class/backlight/rpi_backlight.
func NewSysfsBacklight(dir string) (Backlight, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("power: read max_brightness: %w", err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("power: parse max_brightness: %w", err)
	}
	return &sysfsBacklight{
		brightnessPath: filepath.Join(dir, "brightness"),
		max:            max,
	}, nil
}

func (s *sysfsBacklight) Set(on bool) error {
	v := 0
	if on {
		v = s.max
	}
	if err := os.WriteFile(s.brightnessPath, []byte(strconv.Itoa(v)), 0o644); err != nil {
		return fmt.Errorf("power: write brightness: %w", err)
	}
	return nil
}

// gpioBacklight toggles a backlight enable pin through periph.io.
type gpioBacklight struct {
	pin       gpio.PinOut
	activeLow bool
}

// NewGPIOBacklight initializes the periph host and resolves the named pin,
// e.g. "GPIO18".
func NewGPIOBacklight(pinName string, activeLow bool) (Backlight, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("power: periph host init: %w", err)
	}
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("power: gpio %s not found", pinName)
	}
	return &gpioBacklight{pin: p, activeLow: activeLow}, nil
}

func (g *gpioBacklight) Set(on bool) error {
	level := gpio.Level(on != g.activeLow)
	if err := g.pin.Out(level); err != nil {
		return fmt.Errorf("power: gpio out: %w", err)
	}
	return nil
}

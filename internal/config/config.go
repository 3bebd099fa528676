// Package config holds the appliance configuration: device paths, screen
// power policy and the optional status endpoint. The display geometry is
// deliberately NOT configurable; resolution and color depth are
// compile-time constants shared by the whole pipeline.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BacklightConfig selects how the panel backlight is switched. When both
// fields are empty a mock controller is used (windowed development
// backends, or hardware without a controllable light).
type BacklightConfig struct {
	// Sysfs is a backlight class device directory,
	// e.g. /sys/class/backlight/rpi_backlight.
	Sysfs string `yaml:"sysfs"`
	// GPIO is a periph.io pin name, e.g. "GPIO18". Ignored when Sysfs is set.
	GPIO string `yaml:"gpio"`
	// ActiveLow inverts the GPIO level driving the light on.
	ActiveLow bool `yaml:"active_low"`
}

// QuietHoursConfig defines cron-scheduled windows during which the screen
// is forced off regardless of touch activity. Both specs must be set to
// enable the schedule.
type QuietHoursConfig struct {
	// Off is a cron spec forcing the screen off, e.g. "0 23 * * *".
	Off string `yaml:"off"`
	// On is a cron spec returning control to the idle policy, e.g. "0 7 * * *".
	On string `yaml:"on"`
}

// Config is the top-level appliance configuration.
type Config struct {
	// FBDevice is the framebuffer device path used by the hardware backend.
	FBDevice string `yaml:"fb_device"`

	// InputDevice is the touch digitizer event device. The same path is
	// opened twice on the hardware backend: once by the toolkit-facing
	// driver and once by the raw activity pump.
	InputDevice string `yaml:"input_device"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// IdleTimeoutSec is how long without touch activity before the screen
	// sleeps. 0 disables idle sleep.
	IdleTimeoutSec int `yaml:"idle_timeout_sec"`

	Backlight  BacklightConfig  `yaml:"backlight"`
	QuietHours QuietHoursConfig `yaml:"quiet_hours"`

	// StatusListen is the HTTP listen address of the status endpoint,
	// e.g. "127.0.0.1:8091". Empty disables the endpoint.
	StatusListen string `yaml:"status_listen"`
}

// DefaultConfig returns an in-memory default configuration matching the
// appliance hardware.
func DefaultConfig() *Config {
	return &Config{
		FBDevice:       "/dev/fb0",
		InputDevice:    "/dev/input/event0",
		LogLevel:       "info",
		IdleTimeoutSec: 180,
	}
}

// Normalize fills in missing/zero values so partially-filled configs from
// older versions still behave correctly.
func (c *Config) Normalize() {
	if c.FBDevice == "" {
		c.FBDevice = "/dev/fb0"
	}
	if c.InputDevice == "" {
		c.InputDevice = "/dev/input/event0"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.IdleTimeoutSec < 0 {
		c.IdleTimeoutSec = 0
	}
	// A half-configured quiet-hours schedule would strand the screen off;
	// require both specs.
	if c.QuietHours.Off == "" || c.QuietHours.On == "" {
		c.QuietHours = QuietHoursConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create the parent directory if needed,
//     write a default config with 0600 perms and return the defaults.
//   - If the file exists: read, unmarshal, normalize.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg along with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory as needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ngui-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if cfg.FBDevice != "/dev/fb0" || cfg.InputDevice != "/dev/input/event0" {
		t.Errorf("defaults = %+v, want hardware device paths", cfg)
	}

	// First run must have written the file with restrictive permissions.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file permissions = %o, want 600", perm)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.IdleTimeoutSec = 60
	cfg.Backlight.GPIO = "GPIO18"
	cfg.QuietHours = QuietHoursConfig{Off: "0 23 * * *", On: "0 7 * * *"}
	cfg.StatusListen = "127.0.0.1:8091"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.IdleTimeoutSec != 60 || got.Backlight.GPIO != "GPIO18" ||
		got.QuietHours.Off != "0 23 * * *" || got.StatusListen != "127.0.0.1:8091" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		LogLevel:       "verbose",
		IdleTimeoutSec: -5,
		QuietHours:     QuietHoursConfig{Off: "0 23 * * *"}, // half-configured
	}
	cfg.Normalize()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.IdleTimeoutSec != 0 {
		t.Errorf("IdleTimeoutSec = %d, want 0", cfg.IdleTimeoutSec)
	}
	if cfg.QuietHours.Off != "" {
		t.Error("half-configured quiet hours not cleared")
	}
	if cfg.FBDevice == "" || cfg.InputDevice == "" {
		t.Error("device paths not defaulted")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fb_device: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load on malformed YAML succeeded")
	}
}

//go:build linux

package evdev

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"

	"ngui/internal/gui"
)

func eventBytes(t *testing.T, events []unix.InputEvent) []byte {
	t.Helper()
	out := make([]byte, 0, len(events)*eventSize)
	for i := range events {
		b := (*[1 << 10]byte)(unsafe.Pointer(&events[i]))[:eventSize:eventSize]
		out = append(out, b...)
	}
	return out
}

func TestPointerReadsTouchSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event0")
	events := []unix.InputEvent{
		{Type: evKey, Code: btnTouch, Value: 1},
		{Type: evAbs, Code: absX, Value: 100},
		{Type: evAbs, Code: absY, Value: 200},
		{Type: evSyn, Code: 0, Value: 0},
	}
	if err := os.WriteFile(path, eventBytes(t, events), 0o600); err != nil {
		t.Fatal(err)
	}

	// A plain file rejects EVIOCGABS, so the driver falls back to raw
	// coordinates; that is the path under test here.
	p, err := NewPointer(path, 800, 480)
	if err != nil {
		t.Fatalf("NewPointer: %v", err)
	}
	defer p.Close()

	var data gui.IndevData
	p.Read(&data)
	if data.State != gui.StatePressed {
		t.Error("touch down not reported as pressed")
	}
	if data.Point.X != 100 || data.Point.Y != 200 {
		t.Errorf("point = %+v, want (100, 200)", data.Point)
	}

	// Nothing buffered: state persists, no blocking.
	p.Read(&data)
	if data.State != gui.StatePressed || data.Point.X != 100 {
		t.Errorf("state did not persist across an empty poll: %+v", data)
	}
}

func TestPointerRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event0")
	events := []unix.InputEvent{
		{Type: evKey, Code: btnTouch, Value: 1},
		{Type: evKey, Code: btnTouch, Value: 0},
		{Type: evSyn, Code: 0, Value: 0},
	}
	if err := os.WriteFile(path, eventBytes(t, events), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := NewPointer(path, 800, 480)
	if err != nil {
		t.Fatalf("NewPointer: %v", err)
	}
	defer p.Close()

	var data gui.IndevData
	p.Read(&data)
	if data.State != gui.StateReleased {
		t.Error("touch up not reported as released")
	}
}

func TestPointerScaling(t *testing.T) {
	p := &Pointer{
		horRes: 800,
		verRes: 480,
		xRange: absInfo{Minimum: 0, Maximum: 4095},
		yRange: absInfo{Minimum: 0, Maximum: 4095},
		scaled: true,
	}

	if got := p.scaleX(0); got != 0 {
		t.Errorf("scaleX(0) = %d, want 0", got)
	}
	if got := p.scaleX(4095); got != 799 {
		t.Errorf("scaleX(max) = %d, want 799", got)
	}
	if got := p.scaleY(4095); got != 479 {
		t.Errorf("scaleY(max) = %d, want 479", got)
	}
	mid := p.scaleX(2048)
	if mid < 395 || mid > 405 {
		t.Errorf("scaleX(mid) = %d, want ~400", mid)
	}
}

func TestPointerClampWithoutRanges(t *testing.T) {
	p := &Pointer{horRes: 800, verRes: 480}
	if got := p.scaleX(5000); got != 799 {
		t.Errorf("unscaled X clamp = %d, want 799", got)
	}
	if got := p.scaleY(-3); got != 0 {
		t.Errorf("unscaled Y clamp = %d, want 0", got)
	}
}

func TestNewPointerMissingDevice(t *testing.T) {
	if _, err := NewPointer(filepath.Join(t.TempDir(), "gone"), 800, 480); err == nil {
		t.Error("NewPointer on a missing device succeeded")
	}
}

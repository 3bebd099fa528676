package power

import (
	"testing"
	"time"
)

// recordingBacklight captures Set calls.
type recordingBacklight struct {
	states []bool
}

func (r *recordingBacklight) Set(on bool) error {
	r.states = append(r.states, on)
	return nil
}

func newTestManager(idle time.Duration) (*Manager, *recordingBacklight, *uint32) {
	now := uint32(0)
	bl := &recordingBacklight{}
	m := NewManager(bl, idle, func() uint32 { return now })
	return m, bl, &now
}

func TestIdleSleepAndWake(t *testing.T) {
	m, bl, now := newTestManager(10 * time.Second)

	if !m.ScreenOn() {
		t.Fatal("screen should start on")
	}

	*now = 9_999
	m.Tick()
	if !m.ScreenOn() {
		t.Fatal("screen slept before the idle timeout")
	}

	*now = 10_000
	m.Tick()
	if m.ScreenOn() {
		t.Fatal("screen still on past the idle timeout")
	}

	*now = 12_000
	m.Activity()
	if !m.ScreenOn() {
		t.Fatal("touch did not wake the screen")
	}

	want := []bool{false, true}
	if len(bl.states) != len(want) {
		t.Fatalf("backlight transitions = %v, want %v", bl.states, want)
	}
}

func TestIdleDisabled(t *testing.T) {
	m, _, now := newTestManager(0)

	*now = 0xFFFF_0000
	m.Tick()
	if !m.ScreenOn() {
		t.Error("screen slept with idle sleep disabled")
	}
}

func TestIdleAcrossTickWraparound(t *testing.T) {
	m, _, now := newTestManager(time.Minute)

	*now = 0xFFFFFFF0
	m.Activity()

	// 32 ms later in wrap-safe arithmetic; far from a minute.
	*now = 0x00000010
	m.Tick()
	if !m.ScreenOn() {
		t.Error("wraparound misread as a huge idle period")
	}
	if age := m.LastActivityAge(); age != 32 {
		t.Errorf("LastActivityAge = %d, want 32", age)
	}
}

func TestQuietHours(t *testing.T) {
	m, _, now := newTestManager(time.Minute)

	m.SetQuietHours(true)
	if m.ScreenOn() {
		t.Fatal("screen on during quiet hours")
	}

	// Touch during quiet hours records activity but keeps the screen off.
	*now = 1000
	m.Activity()
	if m.ScreenOn() {
		t.Error("touch woke the screen during quiet hours")
	}
	m.Tick()
	if m.ScreenOn() {
		t.Error("tick woke the screen during quiet hours")
	}

	m.SetQuietHours(false)
	if !m.ScreenOn() {
		t.Error("screen did not come back after quiet hours")
	}
}

func TestApplyPending(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)

	m.pendingQuiet.Store(1)
	m.ApplyPending()
	if m.ScreenOn() {
		t.Fatal("pending quiet-hours entry not applied")
	}

	m.pendingQuiet.Store(2)
	m.ApplyPending()
	if !m.ScreenOn() {
		t.Fatal("pending quiet-hours exit not applied")
	}

	// No pending transition: state stays put.
	m.ApplyPending()
	if !m.ScreenOn() {
		t.Error("ApplyPending with nothing queued changed state")
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)
	if _, err := m.Schedule("not a cron spec", "0 7 * * *"); err == nil {
		t.Error("Schedule accepted a malformed off spec")
	}
	if _, err := m.Schedule("0 23 * * *", "also bad"); err == nil {
		t.Error("Schedule accepted a malformed on spec")
	}
}

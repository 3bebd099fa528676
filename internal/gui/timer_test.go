package gui

import "testing"

func TestTimerFiresOnPeriod(t *testing.T) {
	var now uint32
	ctx := New(func() uint32 { return now })

	fired := 0
	ctx.NewTimer(100, func() { fired++ })

	now = 50
	ctx.TimerHandler()
	if fired != 0 {
		t.Fatalf("timer fired at 50ms with a 100ms period")
	}
	now = 100
	ctx.TimerHandler()
	if fired != 1 {
		t.Fatalf("fired = %d at 100ms, want 1", fired)
	}
	// The period restarts from the firing pass.
	now = 150
	ctx.TimerHandler()
	if fired != 1 {
		t.Fatalf("fired = %d at 150ms, want 1", fired)
	}
	now = 210
	ctx.TimerHandler()
	if fired != 2 {
		t.Fatalf("fired = %d at 210ms, want 2", fired)
	}
}

func TestTimerAcrossTickWraparound(t *testing.T) {
	now := uint32(0xFFFFFFF0)
	ctx := New(func() uint32 { return now })

	fired := 0
	ctx.NewTimer(32, func() { fired++ })

	// 16 ms before the rollover: not due.
	now += 16
	ctx.TimerHandler()
	if fired != 0 {
		t.Fatal("timer fired before its period elapsed")
	}
	// Counter wrapped; 32 ms have elapsed in wrap-safe arithmetic.
	now = 0x00000010
	if n := ctx.TimerHandler(); n != 1 || fired != 1 {
		t.Fatalf("TimerHandler across wraparound fired %d times, want 1", fired)
	}
}

func TestTimerPauseResume(t *testing.T) {
	var now uint32
	ctx := New(func() uint32 { return now })

	fired := 0
	tm := ctx.NewTimer(10, func() { fired++ })
	tm.Pause()

	now = 100
	ctx.TimerHandler()
	if fired != 0 {
		t.Fatal("paused timer fired")
	}

	tm.Resume()
	// Paused passes kept resetting the deadline; the period runs from now.
	now = 105
	ctx.TimerHandler()
	if fired != 0 {
		t.Fatal("resumed timer fired before a fresh period elapsed")
	}
	now = 110
	ctx.TimerHandler()
	if fired != 1 {
		t.Fatalf("fired = %d after resume and full period, want 1", fired)
	}
}

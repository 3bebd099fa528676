package tick

import (
	"testing"
	"time"
)

func TestNowAdvances(t *testing.T) {
	first := Now()
	time.Sleep(30 * time.Millisecond)
	second := Now()

	elapsed := Elapsed(first, second)
	// Allow generous scheduler jitter; the point is monotonic progress in
	// the right ballpark, not precision.
	if elapsed < 20 || elapsed > 500 {
		t.Errorf("Elapsed(%d, %d) = %d ms, want roughly 30", first, second, elapsed)
	}
}

func TestElapsedWraparound(t *testing.T) {
	// Counter rolled over between the two readings.
	var earlier uint32 = 0xFFFFFFF0
	var later uint32 = 0x00000010

	if got := Elapsed(earlier, later); got != 32 {
		t.Errorf("Elapsed(%#x, %#x) = %d, want 32", earlier, later, got)
	}
}

func TestElapsedNoWrap(t *testing.T) {
	if got := Elapsed(1000, 4500); got != 3500 {
		t.Errorf("Elapsed(1000, 4500) = %d, want 3500", got)
	}
	if got := Elapsed(7, 7); got != 0 {
		t.Errorf("Elapsed(7, 7) = %d, want 0", got)
	}
}

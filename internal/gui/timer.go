package gui

import "ngui/internal/tick"

// Timer is a periodic callback serviced by TimerHandler. Periods and
// deadlines are uint32 tick values; all arithmetic goes through
// tick.Elapsed so a counter wraparound at ~49.7 days of uptime does not
// stall or burst-fire timers.
type Timer struct {
	period uint32
	last   uint32
	fn     func()
	paused bool
}

// NewTimer registers a periodic callback. periodMS of 0 fires on every
// TimerHandler pass.
func (c *Context) NewTimer(periodMS uint32, fn func()) *Timer {
	t := &Timer{period: periodMS, last: c.ticks(), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Pause stops the timer from firing until Resume.
func (t *Timer) Pause() { t.paused = true }

// Resume re-enables a paused timer; the period restarts from now.
func (t *Timer) Resume() { t.paused = false }

// TimerHandler runs every due timer once and returns the number fired. The
// host loop calls this on each iteration, mirroring the cooperative
// timer-servicing model of the toolkit.
func (c *Context) TimerHandler() int {
	now := c.ticks()
	fired := 0
	for _, t := range c.timers {
		if t.paused {
			t.last = now
			continue
		}
		if tick.Elapsed(t.last, now) >= t.period {
			t.last = now
			t.fn()
			fired++
		}
	}
	return fired
}

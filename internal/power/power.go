package power

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ngui/internal/logging"
	"ngui/internal/tick"
)

// Manager is the screen sleep state machine. The host feeds it touch
// activity from the raw input pump and calls Tick on every loop pass; the
// manager switches the backlight off after the idle timeout and back on at
// the next touch. Quiet hours force the screen off regardless of activity.
//
// Like the rest of the core, Manager is single-threaded: Activity, Tick and
// the schedule callbacks all run on the host loop (the cron scheduler is
// only used to compute due times; see Schedule).
type Manager struct {
	backlight   Backlight
	idleTimeout uint32 // ms; 0 disables idle sleep
	ticks       func() uint32

	lastActivity uint32
	screenOn     bool
	quietHours   bool

	// pendingQuiet carries quiet-hours transitions from the cron goroutine
	// to the host loop: 0 none, 1 enter, 2 leave.
	pendingQuiet atomic.Int32
}

// NewManager builds a Manager that reads time from ticks (typically
// tick.Now). The screen starts on.
func NewManager(b Backlight, idleTimeout time.Duration, ticks func() uint32) *Manager {
	if ticks == nil {
		ticks = tick.Now
	}
	m := &Manager{
		backlight:   b,
		idleTimeout: uint32(idleTimeout / time.Millisecond),
		ticks:       ticks,
		screenOn:    true,
	}
	m.lastActivity = ticks()
	return m
}

// Activity records a touch. Outside quiet hours it wakes the screen
// immediately.
func (m *Manager) Activity() {
	m.lastActivity = m.ticks()
	if !m.quietHours {
		m.setScreen(true)
	}
}

// Tick applies the idle policy; call once per host loop pass.
func (m *Manager) Tick() {
	if m.quietHours {
		m.setScreen(false)
		return
	}
	if m.idleTimeout == 0 {
		return
	}
	if tick.Elapsed(m.lastActivity, m.ticks()) >= m.idleTimeout {
		m.setScreen(false)
	}
}

// ScreenOn reports the current screen state.
func (m *Manager) ScreenOn() bool { return m.screenOn }

// LastActivityAge returns milliseconds since the last recorded touch,
// wraparound-safe.
func (m *Manager) LastActivityAge() uint32 {
	return tick.Elapsed(m.lastActivity, m.ticks())
}

// SetQuietHours forces the screen off (true) or returns control to the
// idle policy (false). Leaving quiet hours counts as activity so the
// screen comes back up right away.
func (m *Manager) SetQuietHours(enabled bool) {
	m.quietHours = enabled
	if enabled {
		m.setScreen(false)
	} else {
		m.Activity()
	}
}

func (m *Manager) setScreen(on bool) {
	if m.screenOn == on {
		return
	}
	m.screenOn = on
	logging.Info("screen state change", zap.Bool("on", on))
	if m.backlight != nil {
		if err := m.backlight.Set(on); err != nil {
			logging.Warn("backlight switch failed", zap.Bool("on", on), zap.Error(err))
		}
	}
}

// ApplyPending promotes a quiet-hours transition queued by the cron
// goroutine into the state machine. Call from the host loop, before Tick.
func (m *Manager) ApplyPending() {
	switch m.pendingQuiet.Swap(0) {
	case 1:
		m.SetQuietHours(true)
	case 2:
		m.SetQuietHours(false)
	}
}

// Schedule arms cron-style quiet hours: offSpec forces the screen off,
// onSpec hands it back to the idle policy. Cron callbacks run on the cron
// goroutine, so they only queue a transition; the host loop applies it via
// ApplyPending, keeping all backlight mutation single-threaded.
func (m *Manager) Schedule(offSpec, onSpec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(offSpec, func() { m.pendingQuiet.Store(1) }); err != nil {
		return nil, fmt.Errorf("power: bad quiet-hours off spec %q: %w", offSpec, err)
	}
	if _, err := c.AddFunc(onSpec, func() { m.pendingQuiet.Store(2) }); err != nil {
		return nil, fmt.Errorf("power: bad quiet-hours on spec %q: %w", onSpec, err)
	}
	c.Start()
	return c, nil
}

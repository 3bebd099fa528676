// Package gui is the registration and dispatch surface the display/input
// drivers plug into. It models the toolkit boundary of the appliance UI:
// drivers register a display with a flush callback and one or more input
// devices with read callbacks; the host loop then services timers and polls
// input cooperatively on a single thread.
//
// The Context is created once at startup and owns every registered handle
// for the process lifetime. There is deliberately no global state here; the
// host passes the Context to whichever loop drives rendering.
package gui

import (
	"errors"

	"ngui/internal/tick"
)

// TickFunc reports milliseconds since process start as a wrapping uint32.
type TickFunc func() uint32

// Context owns all registered displays, input devices, the default focus
// group and the timer list. It is not safe for concurrent use; the whole
// surface assumes the single-threaded cooperative model of the host loop.
type Context struct {
	ticks TickFunc

	displays []*Display
	indevs   []*Indev
	defGroup *Group
	timers   []*Timer
}

// New creates the process-wide Context. ticks is typically tick.Now.
func New(ticks TickFunc) *Context {
	if ticks == nil {
		ticks = tick.Now
	}
	return &Context{ticks: ticks}
}

// RegisterDisplay validates the driver and returns the display handle the
// host renders through. Displays live until process exit; there is no
// unregister.
func (c *Context) RegisterDisplay(drv DisplayDriver) (*Display, error) {
	if drv.HorRes <= 0 || drv.VerRes <= 0 {
		return nil, errors.New("gui: display resolution must be positive")
	}
	if drv.Buf == nil || drv.Buf.size == 0 {
		return nil, errors.New("gui: display driver has no draw buffer")
	}
	if drv.Flush == nil {
		return nil, errors.New("gui: display driver has no flush callback")
	}
	d := &Display{drv: drv, ctx: c}
	c.displays = append(c.displays, d)
	return d, nil
}

// ActiveDisplay returns the first registered display, or nil.
func (c *Context) ActiveDisplay() *Display {
	if len(c.displays) == 0 {
		return nil
	}
	return c.displays[0]
}

// RegisterIndev registers a pointer or keypad input source.
func (c *Context) RegisterIndev(drv IndevDriver) (*Indev, error) {
	switch drv.Type {
	case IndevPointer, IndevKeypad:
	default:
		return nil, errors.New("gui: unknown input device type")
	}
	if drv.Read == nil {
		return nil, errors.New("gui: input driver has no read callback")
	}
	in := &Indev{drv: drv}
	c.indevs = append(c.indevs, in)
	return in, nil
}

// Indevs returns the registered input devices in registration order.
func (c *Context) Indevs() []*Indev { return c.indevs }

// NewGroup creates an empty focus group. The group is not the default until
// SetDefaultGroup is called with it.
func (c *Context) NewGroup() *Group {
	return &Group{focused: -1}
}

// SetDefaultGroup marks g as the process-wide default focus group,
// superseding any previous default. Keypad devices registered afterwards are
// expected to be associated with it by the backend.
func (c *Context) SetDefaultGroup(g *Group) {
	c.defGroup = g
}

// DefaultGroup returns the current default focus group, or nil if none was
// created yet.
func (c *Context) DefaultGroup() *Group { return c.defGroup }

// PollInput invokes every registered read callback exactly once and
// dispatches key presses from grouped keypad devices to their group. Read
// callbacks must never block; they report the current state and return.
func (c *Context) PollInput() {
	for _, in := range c.indevs {
		var data IndevData
		in.drv.Read(&data)
		prev := in.last
		in.last = data
		if in.drv.Type == IndevKeypad && in.group != nil {
			if data.State == StatePressed && (prev.State != StatePressed || prev.Key != data.Key) {
				in.group.SendKey(data.Key)
			}
		}
	}
}

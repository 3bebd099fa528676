package gui

import "image"

// IndevType classifies an input device.
type IndevType int

const (
	IndevPointer IndevType = iota + 1
	IndevKeypad
)

// IndevState is the pressed/released state reported by a read callback.
type IndevState int

const (
	StateReleased IndevState = iota
	StatePressed
)

// Navigation keys delivered by keypad read callbacks. Printable keys pass
// through as their rune value.
const (
	KeyUp        uint32 = 17
	KeyDown      uint32 = 18
	KeyRight     uint32 = 19
	KeyLeft      uint32 = 20
	KeyEsc       uint32 = 27
	KeyDel       uint32 = 127
	KeyBackspace uint32 = 8
	KeyEnter     uint32 = 10
	KeyNext      uint32 = 9
	KeyPrev      uint32 = 11
	KeyHome      uint32 = 2
	KeyEnd       uint32 = 3
)

// Point is a pixel position on the display.
type Point struct {
	X, Y int
}

// IndevData is filled by a read callback on every poll. Pointer devices set
// Point and State; keypad devices set Key and State.
type IndevData struct {
	Point Point
	Key   uint32
	State IndevState
}

// ReadFunc reports the device's current state. It must never block: poll
// whatever is buffered, update internal state, fill data, return.
type ReadFunc func(data *IndevData)

// IndevDriver describes an input source to RegisterIndev.
type IndevDriver struct {
	Type IndevType
	Read ReadFunc
}

// Indev is a registered input device handle.
type Indev struct {
	drv    IndevDriver
	group  *Group
	cursor image.Image
	last   IndevData
}

func (in *Indev) Type() IndevType { return in.drv.Type }

// SetGroup associates a keypad device with a focus group; key presses polled
// from the device are dispatched to the group's focused target.
func (in *Indev) SetGroup(g *Group) { in.group = g }

func (in *Indev) Group() *Group { return in.group }

// SetCursor attaches a cursor visual to a pointer device. Used by the X11
// backend, where the hosting window system does not render a cursor over
// the appliance window.
func (in *Indev) SetCursor(img image.Image) { in.cursor = img }

func (in *Indev) Cursor() image.Image { return in.cursor }

// State returns the most recently polled data for the device.
func (in *Indev) State() IndevData { return in.last }

// Target is a keypad-navigable object a focus group cycles through. The
// widget layer implements this; the driver core only guarantees a default
// group exists before keypad devices register.
type Target interface {
	Focus()
	Defocus()
	HandleKey(key uint32)
}

// Group is an ordered set of keypad-navigable targets. At most one group is
// the process-wide default at a time (see Context.SetDefaultGroup).
type Group struct {
	targets []Target
	focused int
}

// Add appends a target; the first target added receives focus.
func (g *Group) Add(t Target) {
	g.targets = append(g.targets, t)
	if g.focused < 0 {
		g.focused = 0
		t.Focus()
	}
}

// Len returns the number of targets in the group.
func (g *Group) Len() int { return len(g.targets) }

// Focused returns the currently focused target, or nil.
func (g *Group) Focused() Target {
	if g.focused < 0 || g.focused >= len(g.targets) {
		return nil
	}
	return g.targets[g.focused]
}

// FocusNext moves focus forward, wrapping around.
func (g *Group) FocusNext() { g.shift(1) }

// FocusPrev moves focus backward, wrapping around.
func (g *Group) FocusPrev() { g.shift(-1) }

func (g *Group) shift(dir int) {
	if len(g.targets) == 0 {
		return
	}
	g.targets[g.focused].Defocus()
	g.focused = (g.focused + dir + len(g.targets)) % len(g.targets)
	g.targets[g.focused].Focus()
}

// SendKey routes a key to the group: Next/Prev move focus, everything else
// goes to the focused target.
func (g *Group) SendKey(key uint32) {
	switch key {
	case KeyNext:
		g.FocusNext()
	case KeyPrev:
		g.FocusPrev()
	default:
		if t := g.Focused(); t != nil {
			t.HandleKey(key)
		}
	}
}

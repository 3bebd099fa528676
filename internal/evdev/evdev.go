//go:build linux

// Package evdev reads touch input from the Linux event-input subsystem.
//
// It has two independent consumers of the same character device, by design:
//
//   - Pointer, the toolkit-facing driver registered with gui.RegisterIndev,
//     which interprets absolute-position and touch events; and
//   - the raw pump (pump.go), a second non-blocking descriptor the host
//     drains out-of-band purely to detect activity for idle/power policy.
//
// Both opens are non-blocking and neither read perturbs the other beyond
// consuming bytes from its own descriptor's queue; evdev gives every open a
// private event queue, so the dual-consumer setup is safe.
package evdev

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"ngui/internal/gui"
	"ngui/internal/logging"
)

// Event type/code constants from linux/input-event-codes.h; only the ones
// the pointer driver interprets.
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	absX           = 0x00
	absY           = 0x01
	absMtPositionX = 0x35
	absMtPositionY = 0x36

	btnTouch = 0x14a
)

// eventSize is the kernel input_event record size on the target; 24 bytes
// on 64-bit, 16 on 32-bit.
const eventSize = int(unsafe.Sizeof(unix.InputEvent{}))

// absInfo mirrors struct input_absinfo for the EVIOCGABS ioctl.
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Linux _IOC encoding; x/sys/unix does not wrap the function-like EVIOCG*
// macros, so the request numbers are built by hand.
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocRead = 2
)

func eviocgabs(abs int) uintptr {
	// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
	return uintptr(iocRead<<iocDirShift |
		int('E')<<iocTypeShift |
		(0x40+abs)<<iocNRShift |
		int(unsafe.Sizeof(absInfo{}))<<iocSizeShift)
}

func ioctlAbsInfo(fd int, abs int) (absInfo, error) {
	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), eviocgabs(abs), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return info, errno
	}
	return info, nil
}

// Pointer is the toolkit-facing touch digitizer driver. Its Read method
// satisfies gui.ReadFunc: each poll drains whatever events are buffered on
// the non-blocking descriptor and reports the latest position and contact
// state, scaled to the display resolution.
type Pointer struct {
	fd     int
	horRes int
	verRes int

	xRange, yRange absInfo
	scaled         bool

	x, y    int
	pressed bool

	readBuf []byte
}

// NewPointer opens the input device at path non-blocking and queries the
// absolute axis ranges for scaling raw coordinates to horRes x verRes. A
// device that does not report axis ranges still works; coordinates are then
// passed through clamped.
func NewPointer(path string, horRes, verRes int) (*Pointer, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	p := &Pointer{
		fd:      fd,
		horRes:  horRes,
		verRes:  verRes,
		readBuf: make([]byte, 64*eventSize),
	}
	xr, xerr := ioctlAbsInfo(fd, absX)
	yr, yerr := ioctlAbsInfo(fd, absY)
	if xerr == nil && yerr == nil && xr.Maximum > xr.Minimum && yr.Maximum > yr.Minimum {
		p.xRange, p.yRange = xr, yr
		p.scaled = true
	} else {
		logging.Warn("evdev: no abs axis ranges, using raw coordinates", zap.String("device", path))
	}
	return p, nil
}

// Read drains buffered events and fills data with the current pointer
// state. Never blocks.
func (p *Pointer) Read(data *gui.IndevData) {
	for {
		n, err := unix.Read(p.fd, p.readBuf)
		if n <= 0 || err != nil {
			break
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			ev := (*unix.InputEvent)(unsafe.Pointer(&p.readBuf[off]))
			p.apply(ev)
		}
		if n < len(p.readBuf) {
			break
		}
	}
	data.Point = gui.Point{X: p.x, Y: p.y}
	if p.pressed {
		data.State = gui.StatePressed
	} else {
		data.State = gui.StateReleased
	}
}

func (p *Pointer) apply(ev *unix.InputEvent) {
	switch ev.Type {
	case evAbs:
		switch ev.Code {
		case absX, absMtPositionX:
			p.x = p.scaleX(ev.Value)
		case absY, absMtPositionY:
			p.y = p.scaleY(ev.Value)
		}
	case evKey:
		if ev.Code == btnTouch {
			p.pressed = ev.Value != 0
		}
	}
}

func (p *Pointer) scaleX(raw int32) int {
	if !p.scaled {
		return clamp(int(raw), 0, p.horRes-1)
	}
	span := int(p.xRange.Maximum - p.xRange.Minimum)
	v := int(raw-p.xRange.Minimum) * (p.horRes - 1) / span
	return clamp(v, 0, p.horRes-1)
}

func (p *Pointer) scaleY(raw int32) int {
	if !p.scaled {
		return clamp(int(raw), 0, p.verRes-1)
	}
	span := int(p.yRange.Maximum - p.yRange.Minimum)
	v := int(raw-p.yRange.Minimum) * (p.verRes - 1) / span
	return clamp(v, 0, p.verRes-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Close releases the device descriptor.
func (p *Pointer) Close() error {
	return unix.Close(p.fd)
}

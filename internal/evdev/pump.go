//go:build linux

package evdev

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Unopened is the sentinel for a pump descriptor that was never opened or
// failed to open. ClosePump and Drain treat it as a safe no-op.
const Unopened = -1

// DefaultDevicePath is the touch digitizer on the appliance hardware.
const DefaultDevicePath = "/dev/input/event0"

// OpenPump opens the input device at path as a second, raw descriptor,
// independent of the toolkit's own consumption of the same device. The
// descriptor is read/write, non-blocking and detached from any controlling
// terminal, so draining it can never stall the render loop.
//
// On failure the error is returned and the caller keeps Unopened; a missing
// or inaccessible device is a degraded mode (no activity detection), not a
// fatal condition.
func OpenPump(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_NOCTTY, 0)
	if err != nil {
		return Unopened, fmt.Errorf("evdev: open pump %s: %w", path, err)
	}
	return fd, nil
}

// ClosePump releases the pump descriptor. No-op for Unopened.
func ClosePump(fd int) {
	if fd == Unopened {
		return
	}
	_ = unix.Close(fd)
}

// Drain performs non-blocking reads of fixed-size input event records until
// the descriptor has nothing buffered, and reports whether at least one
// full record was consumed. Event content is never interpreted; the only
// output is the activity signal. Drain on Unopened returns false.
func Drain(fd int) bool {
	if fd == Unopened {
		return false
	}
	buf := make([]byte, 64*eventSize)
	got := false
	for {
		n, err := unix.Read(fd, buf)
		if err != nil || n <= 0 {
			// EAGAIN is the expected steady state on an idle device.
			break
		}
		if n >= eventSize {
			got = true
		}
		if n < len(buf) {
			break
		}
	}
	return got
}

// Package tick provides the process-wide monotonic millisecond counter used
// by the GUI timer engine. The counter is a uint32 that wraps to zero after
// roughly 49.7 days of uptime; consumers must compare two readings with
// Elapsed, never with a direct ordering comparison.
package tick

import "time"

// start is captured at process init. time.Since uses the monotonic clock
// reading embedded in start, so wall-clock jumps (NTP, manual set) do not
// affect tick values.
var start = time.Now()

// Now returns milliseconds elapsed since process start, truncated to uint32.
// The truncation is the defined rollover behavior, not an accident.
func Now() uint32 {
	return uint32(time.Since(start) / time.Millisecond)
}

// Elapsed returns the number of milliseconds between two tick readings,
// correct across a single uint32 wraparound. Unsigned subtraction is exactly
// (later - earlier) mod 2^32.
func Elapsed(earlier, later uint32) uint32 {
	return later - earlier
}

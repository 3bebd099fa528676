//go:build linux

package evdev

import (
	"os"
	"path/filepath"
	"testing"
)

// writeRecords creates a file containing n full input-event records plus
// extra trailing bytes, and returns its path.
func writeRecords(t *testing.T, n int, extra int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event0")
	data := make([]byte, n*eventSize+extra)
	for i := range data {
		data[i] = byte(i)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write records: %v", err)
	}
	return path
}

func TestDrainConsumesBufferedRecords(t *testing.T) {
	path := writeRecords(t, 3, 0)
	fd, err := OpenPump(path)
	if err != nil {
		t.Fatalf("OpenPump: %v", err)
	}
	defer ClosePump(fd)

	if !Drain(fd) {
		t.Error("Drain = false with 3 buffered records, want true")
	}
	if Drain(fd) {
		t.Error("Drain = true with nothing left buffered, want false")
	}
}

func TestDrainManyRecords(t *testing.T) {
	// More records than one read buffer holds; Drain must keep reading
	// until the source is exhausted.
	path := writeRecords(t, 200, 0)
	fd, err := OpenPump(path)
	if err != nil {
		t.Fatalf("OpenPump: %v", err)
	}
	defer ClosePump(fd)

	if !Drain(fd) {
		t.Error("Drain = false with 200 buffered records, want true")
	}
	if Drain(fd) {
		t.Error("Drain = true after full drain, want false")
	}
}

func TestDrainShortRecord(t *testing.T) {
	// Fewer bytes than one record: no full record was read.
	path := writeRecords(t, 0, eventSize/2)
	fd, err := OpenPump(path)
	if err != nil {
		t.Fatalf("OpenPump: %v", err)
	}
	defer ClosePump(fd)

	if Drain(fd) {
		t.Error("Drain = true on a partial record, want false")
	}
}

func TestPumpUnopenedSentinel(t *testing.T) {
	if Drain(Unopened) {
		t.Error("Drain(Unopened) = true, want false")
	}
	// Must not panic or touch any descriptor.
	ClosePump(Unopened)
}

func TestOpenPumpMissingDevice(t *testing.T) {
	fd, err := OpenPump(filepath.Join(t.TempDir(), "no-such-device"))
	if err == nil {
		t.Fatal("OpenPump on a missing path succeeded")
	}
	if fd != Unopened {
		t.Errorf("fd = %d on failure, want Unopened", fd)
	}
	// The sentinel stays safe for subsequent calls.
	if Drain(fd) {
		t.Error("Drain after failed open = true, want false")
	}
	ClosePump(fd)
}

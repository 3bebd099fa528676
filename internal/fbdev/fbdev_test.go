//go:build linux

package fbdev

import (
	"testing"

	"ngui/internal/gui"
)

func TestBlit16bpp(t *testing.T) {
	// 4x4 screen, 16bpp, no row padding.
	const lineLen = 4 * 2
	mem := make([]byte, 4*lineLen)

	area := gui.Area{X1: 1, Y1: 1, X2: 2, Y2: 2}
	pixels := []gui.Color{0x1234, 0x5678, 0x9abc, 0xdef0}
	blit(mem, lineLen, 16, area, pixels)

	// Little-endian RGB565 at (1,1).
	off := 1*lineLen + 1*2
	if mem[off] != 0x34 || mem[off+1] != 0x12 {
		t.Errorf("pixel (1,1) = %#x %#x, want 0x34 0x12", mem[off], mem[off+1])
	}
	// (2,2) holds the last pixel.
	off = 2*lineLen + 2*2
	if mem[off] != 0xf0 || mem[off+1] != 0xde {
		t.Errorf("pixel (2,2) = %#x %#x, want 0xf0 0xde", mem[off], mem[off+1])
	}
	// Outside the area stays untouched.
	if mem[0] != 0 || mem[len(mem)-1] != 0 {
		t.Error("blit wrote outside the target area")
	}
}

func TestBlit32bppExpandsRGB565(t *testing.T) {
	const lineLen = 2 * 4
	mem := make([]byte, 1*lineLen)

	// Pure red in RGB565.
	blit(mem, lineLen, 32, gui.Area{X1: 0, Y1: 0, X2: 0, Y2: 0}, []gui.Color{0xf800})

	// BGRX layout.
	if mem[0] != 0x00 || mem[1] != 0x00 || mem[2] != 0xf8 || mem[3] != 0xff {
		t.Errorf("expanded pixel = % x, want 00 00 f8 ff", mem[:4])
	}
}

func TestBlitClipsOutOfRangeRows(t *testing.T) {
	// Mapped region covers only 2 rows; the blit claims 4. The copy must
	// clip instead of writing past the mapping.
	const lineLen = 4 * 2
	mem := make([]byte, 2*lineLen)

	area := gui.Area{X1: 0, Y1: 0, X2: 3, Y2: 3}
	pixels := make([]gui.Color, 16)
	for i := range pixels {
		pixels[i] = 0xffff
	}
	blit(mem, lineLen, 16, area, pixels)

	for i, b := range mem {
		if b != 0xff {
			t.Fatalf("mapped byte %d = %#x, want 0xff", i, b)
		}
	}
}

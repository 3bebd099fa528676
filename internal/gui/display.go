package gui

import "fmt"

// Color is a 16-bit RGB565 pixel, the fixed color depth of the appliance
// display pipeline.
type Color uint16

// RGB packs 8-bit channels into RGB565.
func RGB(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// Area is an inclusive pixel rectangle: X2/Y2 are the last column/row inside
// the area, matching how flush callbacks address the target surface.
type Area struct {
	X1, Y1, X2, Y2 int
}

func (a Area) W() int { return a.X2 - a.X1 + 1 }
func (a Area) H() int { return a.Y2 - a.Y1 + 1 }

// Size returns the pixel count of the area.
func (a Area) Size() int { return a.W() * a.H() }

// FlushFunc copies a rendered tile to the physical or virtual surface.
// pixels holds exactly area.Size() values in row-major order.
type FlushFunc func(area Area, pixels []Color)

// DrawBuf is the render buffer a display driver hands to RegisterDisplay.
// A single buffer yields a partial-refresh strategy (render a tile, flush
// it, reuse the buffer); two buffers of equal size alternate so the driver
// can consume one while the next tile is rendered into the other.
type DrawBuf struct {
	bufs   [2][]Color
	size   int
	active int
}

// NewDrawBuf wraps one or two equally sized pixel buffers. buf2 may be nil
// for single-buffered operation.
func NewDrawBuf(buf1, buf2 []Color) (*DrawBuf, error) {
	if len(buf1) == 0 {
		return nil, fmt.Errorf("gui: draw buffer must not be empty")
	}
	if buf2 != nil && len(buf2) != len(buf1) {
		return nil, fmt.Errorf("gui: draw buffers differ in size: %d vs %d", len(buf1), len(buf2))
	}
	return &DrawBuf{bufs: [2][]Color{buf1, buf2}, size: len(buf1)}, nil
}

// Size returns the per-buffer capacity in pixels.
func (b *DrawBuf) Size() int { return b.size }

// Double reports whether the buffer alternates between two backing arrays.
func (b *DrawBuf) Double() bool { return b.bufs[1] != nil }

func (b *DrawBuf) next() []Color {
	buf := b.bufs[b.active]
	if b.Double() {
		b.active = 1 - b.active
	}
	return buf
}

// DisplayDriver describes a display surface to RegisterDisplay. HorRes and
// VerRes come from compile-time constants, never from hardware probing.
type DisplayDriver struct {
	HorRes, VerRes int
	Buf            *DrawBuf
	Flush          FlushFunc
	Antialiasing   bool
}

// Display is the registered destination surface the render pipeline draws
// into. Created once at startup, never resized or destroyed.
type Display struct {
	drv DisplayDriver
	ctx *Context
}

func (d *Display) HorRes() int { return d.drv.HorRes }
func (d *Display) VerRes() int { return d.drv.VerRes }

// Full returns the area covering the whole display.
func (d *Display) Full() Area {
	return Area{X1: 0, Y1: 0, X2: d.drv.HorRes - 1, Y2: d.drv.VerRes - 1}
}

// Blit renders pixels covering area through the draw buffer, flushing one
// tile at a time. Tiles are whole rows whenever a row fits in the buffer;
// otherwise rows are split into segments. The tile size is what makes the
// per-backend buffer sizing observable: a 1/10-frame buffer flushes the
// screen in ten slices, a 100-row buffer in five.
func (d *Display) Blit(area Area, pixels []Color) error {
	if area.X1 < 0 || area.Y1 < 0 || area.X2 >= d.drv.HorRes || area.Y2 >= d.drv.VerRes || area.X1 > area.X2 || area.Y1 > area.Y2 {
		return fmt.Errorf("gui: blit area %+v outside %dx%d display", area, d.drv.HorRes, d.drv.VerRes)
	}
	if len(pixels) != area.Size() {
		return fmt.Errorf("gui: blit pixel count %d does not match area size %d", len(pixels), area.Size())
	}

	w := area.W()
	if w <= d.drv.Buf.size {
		rowsPerTile := d.drv.Buf.size / w
		for y := area.Y1; y <= area.Y2; y += rowsPerTile {
			rows := rowsPerTile
			if y+rows-1 > area.Y2 {
				rows = area.Y2 - y + 1
			}
			buf := d.drv.Buf.next()
			n := copy(buf, pixels[(y-area.Y1)*w:(y-area.Y1+rows)*w])
			d.drv.Flush(Area{X1: area.X1, Y1: y, X2: area.X2, Y2: y + rows - 1}, buf[:n])
		}
		return nil
	}

	// Row wider than the buffer: flush each row in segments.
	for y := area.Y1; y <= area.Y2; y++ {
		row := pixels[(y-area.Y1)*w : (y-area.Y1+1)*w]
		for x := 0; x < w; x += d.drv.Buf.size {
			seg := d.drv.Buf.size
			if x+seg > w {
				seg = w - x
			}
			buf := d.drv.Buf.next()
			n := copy(buf, row[x:x+seg])
			d.drv.Flush(Area{X1: area.X1 + x, Y1: y, X2: area.X1 + x + seg - 1, Y2: y}, buf[:n])
		}
	}
	return nil
}

// Fill renders a solid color over area using the same tiling as Blit.
func (d *Display) Fill(area Area, c Color) error {
	if area.X1 < 0 || area.Y1 < 0 || area.X2 >= d.drv.HorRes || area.Y2 >= d.drv.VerRes || area.X1 > area.X2 || area.Y1 > area.Y2 {
		return fmt.Errorf("gui: fill area %+v outside %dx%d display", area, d.drv.HorRes, d.drv.VerRes)
	}
	w := area.W()
	if w > d.drv.Buf.size {
		// Row wider than the buffer: one segment at a time.
		for y := area.Y1; y <= area.Y2; y++ {
			for x := 0; x < w; x += d.drv.Buf.size {
				seg := d.drv.Buf.size
				if x+seg > w {
					seg = w - x
				}
				buf := d.drv.Buf.next()
				for i := 0; i < seg; i++ {
					buf[i] = c
				}
				d.drv.Flush(Area{X1: area.X1 + x, Y1: y, X2: area.X1 + x + seg - 1, Y2: y}, buf[:seg])
			}
		}
		return nil
	}
	rowsPerTile := d.drv.Buf.size / w
	for y := area.Y1; y <= area.Y2; y += rowsPerTile {
		rows := rowsPerTile
		if y+rows-1 > area.Y2 {
			rows = area.Y2 - y + 1
		}
		n := rows * w
		buf := d.drv.Buf.next()
		for i := 0; i < n; i++ {
			buf[i] = c
		}
		d.drv.Flush(Area{X1: area.X1, Y1: y, X2: area.X2, Y2: y + rows - 1}, buf[:n])
	}
	return nil
}

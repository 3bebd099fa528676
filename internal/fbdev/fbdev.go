//go:build linux

// Package fbdev drives the Linux framebuffer device backing the appliance
// screen. The device is opened once at startup, its memory mapped for the
// process lifetime, and rendered tiles are copied in by the flush callback.
package fbdev

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"ngui/internal/gui"
)

// DefaultDevicePath is the primary framebuffer on the appliance hardware.
const DefaultDevicePath = "/dev/fb0"

// FBIOGET_VSCREENINFO / FBIOGET_FSCREENINFO from linux/fb.h.
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// bitfield mirrors struct fb_bitfield.
type bitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

// varScreenInfo mirrors struct fb_var_screeninfo.
type varScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          bitfield
	Green        bitfield
	Blue         bitfield
	Transp       bitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	Pixclock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

// fixScreenInfo mirrors struct fb_fix_screeninfo.
type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// Device is an opened, memory-mapped framebuffer.
type Device struct {
	fd      int
	mem     []byte
	xres    int
	yres    int
	bpp     int
	lineLen int
}

// Open opens and maps the framebuffer at path.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fbdev: open %s: %w", path, err)
	}

	var vinfo varScreenInfo
	if err := ioctl(fd, fbioGetVScreenInfo, unsafe.Pointer(&vinfo)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fbdev: FBIOGET_VSCREENINFO: %w", err)
	}
	var finfo fixScreenInfo
	if err := ioctl(fd, fbioGetFScreenInfo, unsafe.Pointer(&finfo)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fbdev: FBIOGET_FSCREENINFO: %w", err)
	}

	switch vinfo.BitsPerPixel {
	case 16, 32:
	default:
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fbdev: unsupported depth %d bpp", vinfo.BitsPerPixel)
	}

	mem, err := unix.Mmap(fd, 0, int(finfo.SmemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fbdev: mmap %d bytes: %w", finfo.SmemLen, err)
	}

	return &Device{
		fd:      fd,
		mem:     mem,
		xres:    int(vinfo.XRes),
		yres:    int(vinfo.YRes),
		bpp:     int(vinfo.BitsPerPixel),
		lineLen: int(finfo.LineLength),
	}, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Sizes reports the mode the hardware actually runs, for the mismatch
// warning against the compile-time constants.
func (d *Device) Sizes() (hor, ver, bpp int) {
	return d.xres, d.yres, d.bpp
}

// Flush copies one rendered tile into framebuffer memory. It satisfies
// gui.FlushFunc. Rows outside the mapped region are clipped rather than
// written, so a mode mismatch cannot corrupt memory.
func (d *Device) Flush(area gui.Area, pixels []gui.Color) {
	blit(d.mem, d.lineLen, d.bpp, area, pixels)
}

// blit is the copy loop behind Flush, separated so it can be exercised
// against a plain byte slice.
func blit(mem []byte, lineLen, bpp int, area gui.Area, pixels []gui.Color) {
	bytesPP := bpp / 8
	w := area.W()
	for row := 0; row < area.H(); row++ {
		y := area.Y1 + row
		off := y*lineLen + area.X1*bytesPP
		if off < 0 || off+w*bytesPP > len(mem) {
			continue
		}
		src := pixels[row*w : (row+1)*w]
		switch bpp {
		case 16:
			for i, c := range src {
				mem[off+2*i] = byte(c)
				mem[off+2*i+1] = byte(c >> 8)
			}
		case 32:
			for i, c := range src {
				r := byte(c>>11) << 3
				g := byte(c>>5&0x3f) << 2
				b := byte(c&0x1f) << 3
				mem[off+4*i] = b
				mem[off+4*i+1] = g
				mem[off+4*i+2] = r
				mem[off+4*i+3] = 0xff
			}
		}
	}
}

// Close unmaps and closes the device. The appliance never does this before
// exit, but tests and error paths do.
func (d *Device) Close() error {
	if d.mem != nil {
		if err := unix.Munmap(d.mem); err != nil {
			return err
		}
		d.mem = nil
	}
	return unix.Close(d.fd)
}

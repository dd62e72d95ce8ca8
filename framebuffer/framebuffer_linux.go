package framebuffer

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/internal/ioctl"
	"github.com/BeatGlow/eink/pixel"
)

const (
	// From <linux/fb.h>
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// From <linux/mxcfb.h>
const (
	mxcfbUpdateModePartial = 0x0
	mxcfbUpdateModeFull    = 0x1

	// tempUseRemarkableDraw selects the temperature compensation used by xochitl.
	tempUseRemarkableDraw = 0x0018

	// updateMarker tags our updates, nothing waits for it to complete.
	updateMarker = 0x2a
)

var mxcfbSendUpdate = ioctl.IOW('F', 0x2e, unsafe.Sizeof(mxcfbUpdateData{}))

type linuxFrameBuffer struct {
	pixel.RawImage
	f          *os.File
	fd         uintptr
	info       linuxFrameBufferInfo
	screenInfo linuxVarScreenInfo
	closed     bool
}

// Open a Linux FrameBuffer device (fbdev) by name, typically /dev/fb0.
func Open(name string) (Device, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	fb := &linuxFrameBuffer{
		f:  f,
		fd: f.Fd(),
	}
	if err = ioctl.Do(fb.fd, fbioGetFScreenInfo, unsafe.Pointer(&fb.info)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: %s: fixed screen info: %w", name, err)
	}

	// Request virtual screen info.
	if err = ioctl.Do(fb.fd, fbioGetVScreenInfo, unsafe.Pointer(&fb.screenInfo)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: %s: variable screen info: %w", name, err)
	}
	if err = checkScreenInfo(&fb.screenInfo); err != nil {
		_ = f.Close()
		return nil, err
	}

	var (
		width  = int(fb.screenInfo.Xres)
		height = int(fb.screenInfo.Yres)
		stride = max(int(fb.info.LineLength), width*2)
	)

	// Map pixel buffer.
	if fb.Pix, err = unix.Mmap(int(fb.fd), 0, stride*height, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: %s: mmap: %w", name, err)
	}
	fb.Rect = image.Rect(0, 0, width, height)
	fb.Stride = stride
	fb.Order = binary.LittleEndian

	return fb, nil
}

func checkScreenInfo(info *linuxVarScreenInfo) error {
	if info.BitsPerPixel != 16 {
		return fmt.Errorf("%w, but got %d", ErrBitsPerPixel, info.BitsPerPixel)
	}
	if info.Xres == 0 || info.Yres == 0 {
		return fmt.Errorf("framebuffer: invalid resolution %dx%d", info.Xres, info.Yres)
	}
	return nil
}

func (fb *linuxFrameBuffer) String() string {
	return fmt.Sprintf("mxcfb %s %dx%d", fb.f.Name(), fb.Rect.Dx(), fb.Rect.Dy())
}

// Size of the framebuffer in pixels.
func (fb *linuxFrameBuffer) Size() (width, height int) {
	return fb.Rect.Dx(), fb.Rect.Dy()
}

// WritePixel stores a raw sample in the mapped buffer.
// Writes after Close are ignored.
func (fb *linuxFrameBuffer) WritePixel(x, y int, raw uint16) {
	if fb.closed {
		return
	}
	fb.SetRaw(x, y, raw)
}

// Refresh syncs the mapped memory and asks the EPDC to update r.
func (fb *linuxFrameBuffer) Refresh(r eink.Rectangle, mode eink.Waveform) error {
	if fb.closed {
		return ErrClosed
	}
	if r = r.Clip(fb.Size()); r.Empty() {
		return nil
	}

	// Sync the mapped memory to ensure it is visible to the server.
	if err := unix.Msync(fb.Pix, unix.MS_SYNC); err != nil {
		return fmt.Errorf("framebuffer: msync: %w", err)
	}

	update := newUpdate(r, mode)
	if err := ioctl.Do(fb.fd, mxcfbSendUpdate, unsafe.Pointer(&update)); err != nil {
		return fmt.Errorf("framebuffer: send update %s: %w", r, err)
	}
	return nil
}

func newUpdate(r eink.Rectangle, mode eink.Waveform) mxcfbUpdateData {
	updateMode := uint32(mxcfbUpdateModePartial)
	if mode == eink.WaveformInit {
		updateMode = mxcfbUpdateModeFull
	}
	return mxcfbUpdateData{
		UpdateRegion: mxcfbRect{
			Top:    uint32(r.Top),
			Left:   uint32(r.Left),
			Width:  uint32(r.Width),
			Height: uint32(r.Height),
		},
		WaveformMode: uint32(mode),
		UpdateMode:   updateMode,
		UpdateMarker: updateMarker,
		Temp:         tempUseRemarkableDraw,
	}
}

// Close the framebuffer device
func (fb *linuxFrameBuffer) Close() error {
	if fb.closed {
		return ErrClosed
	}
	fb.closed = true
	if err := unix.Munmap(fb.Pix); err != nil {
		_ = fb.f.Close()
		return fmt.Errorf("framebuffer: munmap: %w", err)
	}
	fb.Pix = nil
	return fb.f.Close()
}

type linuxFrameBufferInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

// linuxBitField for the color
type linuxBitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

// linuxVarScreenInfo contains device independent changeable information about a frame buffer device and a specific video mode.
type linuxVarScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha linuxBitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}

type mxcfbRect struct {
	Top    uint32
	Left   uint32
	Width  uint32
	Height uint32
}

type mxcfbAltBufferData struct {
	PhysAddr        uint32
	Width           uint32
	Height          uint32
	AltUpdateRegion mxcfbRect
}

// mxcfbUpdateData is struct mxcfb_update_data.
type mxcfbUpdateData struct {
	UpdateRegion  mxcfbRect
	WaveformMode  uint32
	UpdateMode    uint32
	UpdateMarker  uint32
	Temp          int32
	Flags         uint32
	DitherMode    int32
	QuantBit      int32
	AltBufferData mxcfbAltBufferData
}

// Package framebuffer provides access to e-ink panels through the operating system's native framebuffer
//
// This requires a Linux framebuffer device driven by an mxcfb (i.MX EPDC)
// compatible driver, such as the reMarkable /dev/fb0 or rm2fb. The device is
// opened with [Open] and serves as an [eink.Surface]: pixels are written into
// the memory mapped buffer and become visible after a refresh.
package framebuffer

import (
	"errors"

	"github.com/BeatGlow/eink"
)

// Errors
var (
	ErrNotSupported = errors.New("framebuffer: not supported")
	ErrBitsPerPixel = errors.New("framebuffer: expected 16 bits per pixel")
	ErrClosed       = errors.New("framebuffer: device is closed")
)

// Device is an open framebuffer device.
type Device interface {
	eink.Surface

	// Close unmaps the pixel buffer and closes the device.
	Close() error
}

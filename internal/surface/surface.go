// Package surface opens the display selected in the configuration.
package surface

import (
	"fmt"
	"io"

	"periph.io/x/host/v3"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/epd"
	"github.com/BeatGlow/eink/framebuffer"
	"github.com/BeatGlow/eink/internal/config"
	"github.com/BeatGlow/eink/memory"
)

// Device is an open display.
type Device struct {
	eink.Surface
	closer io.Closer
}

// Memory returns the in-process surface, if that driver is in use.
func (d *Device) Memory() (*memory.Surface, bool) {
	m, ok := d.Surface.(*memory.Surface)
	return m, ok
}

// Close the display.
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Open the configured display driver.
func Open(cfg *config.Config) (*Device, error) {
	switch driver := cfg.Surface.Driver; driver {
	case config.DriverFramebuffer:
		fb, err := framebuffer.Open(cfg.Surface.Device)
		if err != nil {
			return nil, err
		}
		return &Device{Surface: fb, closer: fb}, nil

	case config.DriverSPI:
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("surface: periph host init failed: %w", err)
		}
		p, err := epd.Open(cfg.EPDConfig())
		if err != nil {
			return nil, err
		}
		return &Device{Surface: p, closer: p}, nil

	case config.DriverMemory:
		return &Device{Surface: memory.New(cfg.Surface.Width, cfg.Surface.Height)}, nil

	default:
		return nil, fmt.Errorf("surface: unsupported driver %q", driver)
	}
}

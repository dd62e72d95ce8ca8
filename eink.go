// Package eink drives electrophoretic displays through a refresh-coalescing buffer.
//
// E-ink panels ghost and flicker when the same region is refreshed too often.
// The [Buffer] lets callers treat pixel writes as immediate while it rate-limits
// the physical commits per pixel: pixels committed within the last [MinPulse]
// are deferred and retried on a later [Buffer.Flush] or [Buffer.Ping].
//
// The hardware is reached through the [Surface] interface, implemented by the
// framebuffer, epd and memory packages.
package eink

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Errors
var (
	ErrSize = errors.New("eink: surface has no pixels")
)

// Waveform selects the update speed and quality of a physical refresh. The
// value is passed to the hardware unmodified.
type Waveform int

// Waveform modes understood by mxcfb based controllers.
const (
	WaveformInit Waveform = 0 // Full clear
	WaveformDU   Waveform = 1 // Direct update, fast black/white
	WaveformGC16 Waveform = 2 // 16 level grayscale, flashing
	WaveformGL16 Waveform = 3 // 16 level grayscale, non-flashing
	WaveformA2   Waveform = 4 // Animation, fastest
)

func (w Waveform) String() string {
	switch w {
	case WaveformInit:
		return "init"
	case WaveformDU:
		return "du"
	case WaveformGC16:
		return "gc16"
	case WaveformGL16:
		return "gl16"
	case WaveformA2:
		return "a2"
	default:
		return fmt.Sprintf("waveform(%d)", int(w))
	}
}

// ParseWaveform accepts a waveform name as returned by String, or its number.
func ParseWaveform(s string) (Waveform, error) {
	for w := WaveformInit; w <= WaveformA2; w++ {
		if strings.EqualFold(s, w.String()) {
			return w, nil
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("eink: invalid waveform %q", s)
	}
	return Waveform(v), nil
}

// Surface is the hardware display.
type Surface interface {
	// Size of the surface in pixels.
	Size() (width, height int)

	// WritePixel stores a raw color in the surface memory. The caller
	// guarantees 0 <= x < width and 0 <= y < height.
	WritePixel(x, y int, raw uint16)

	// Refresh makes the surface memory within r visible on the panel.
	Refresh(r Rectangle, mode Waveform) error
}

// Config is the Buffer configuration.
type Config struct {
	// QueueCapacity is the number of deferred regions that can be pending.
	QueueCapacity int

	// DefaultColor is the palette index all pixels start at.
	DefaultColor uint8

	// Waveform used for every refresh issued by the Buffer.
	Waveform Waveform

	// Clock is the monotonic time source, nil uses the process clock.
	Clock Clock

	// Logger receives engine diagnostics, nil uses [slog.Default].
	Logger *slog.Logger
}

// DefaultConfig are the default configuration values.
var DefaultConfig = Config{
	QueueCapacity: 40000,
	DefaultColor:  15,
	Waveform:      WaveformDU,
}

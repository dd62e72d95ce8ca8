// Package memory implements an in-process e-ink surface.
//
// Written pixels are kept in a raw sample plane and only become visible on the
// simulated screen when their region is refreshed, like on a real panel.
package memory

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/pixel"
)

// Refresh is a recorded refresh request.
type Refresh struct {
	Rect eink.Rectangle
	Mode eink.Waveform
}

func (r Refresh) String() string {
	return fmt.Sprintf("%s %s", r.Rect, r.Mode)
}

// Surface is a display held in memory.
type Surface struct {
	mu        sync.Mutex
	raw       *pixel.RawImage
	screen    *image.Gray
	refreshes []Refresh
}

// New surface of the given size, the screen starts out white.
func New(width, height int) *Surface {
	s := &Surface{
		raw:    pixel.NewRawImage(width, height),
		screen: image.NewGray(image.Rect(0, 0, width, height)),
	}
	s.raw.Fill(pixel.White)
	for i := range s.screen.Pix {
		s.screen.Pix[i] = 0xff
	}
	return s
}

func (s *Surface) String() string {
	return fmt.Sprintf("memory %dx%d", s.raw.Rect.Dx(), s.raw.Rect.Dy())
}

// Size of the surface in pixels.
func (s *Surface) Size() (width, height int) {
	return s.raw.Rect.Dx(), s.raw.Rect.Dy()
}

// WritePixel stores a raw sample.
func (s *Surface) WritePixel(x, y int, raw uint16) {
	s.mu.Lock()
	s.raw.SetRaw(x, y, raw)
	s.mu.Unlock()
}

// Refresh makes the samples in r visible and records the request.
func (s *Surface) Refresh(r eink.Rectangle, mode eink.Waveform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshes = append(s.refreshes, Refresh{Rect: r, Mode: mode})
	r = r.Clip(s.Size())
	for y := r.Top; y < r.Bottom(); y++ {
		for x := r.Left; x < r.Right(); x++ {
			s.screen.Pix[s.screen.PixOffset(x, y)] = uint8(s.raw.RawAt(x, y))
		}
	}
	return nil
}

// Refreshes returns the refresh requests received so far.
func (s *Surface) Refreshes() []Refresh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Refresh(nil), s.refreshes...)
}

// Reset clears the refresh log.
func (s *Surface) Reset() {
	s.mu.Lock()
	s.refreshes = s.refreshes[:0]
	s.mu.Unlock()
}

// Image returns a copy of what the screen shows.
func (s *Surface) Image() *image.Gray {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewGray(s.screen.Rect)
	copy(out.Pix, s.screen.Pix)
	return out
}

// WritePNG encodes the screen contents as PNG.
func (s *Surface) WritePNG(w io.Writer) error {
	return png.Encode(w, s.Image())
}

// Interface checks
var _ eink.Surface = (*Surface)(nil)

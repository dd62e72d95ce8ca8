// Package sketch turns pen reports into strokes on a drawable surface.
package sketch

import (
	"image"
	"image/color"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/draw"
	"github.com/BeatGlow/eink/input"
)

// Stroke follows the pen between reports.
type Stroke struct {
	// Ink and Paper are the colors for drawing and erasing.
	Ink, Paper color.Color

	// Width of the drawn line, the eraser is three times as wide.
	Width int

	last image.Point
	down bool
}

// Apply draws the segment from the previous report to s, scaled to a screen
// of width by height pixels, and returns dirty grown by the touched region.
func (k *Stroke) Apply(dst draw.Image, s input.State, width, height int, dirty eink.Rectangle) eink.Rectangle {
	if !s.Touching.Pressed() {
		k.down = false
		return dirty
	}

	var (
		p    = s.Point(width, height)
		c    = k.Ink
		size = max(k.Width, 1)
		r    image.Rectangle
	)
	if s.Eraser.Pressed() {
		c = k.Paper
		size *= 3
	}

	if k.down {
		r = draw.ThickLine(dst, k.last, p, size, c)
	} else {
		r = draw.Dot(dst, p, size, c)
	}
	k.last, k.down = p, true
	return dirty.Merge(eink.FromImage(r))
}

// Down reports whether the pen touched the surface on the last report.
func (k *Stroke) Down() bool {
	return k.down
}

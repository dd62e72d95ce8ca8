// Package draw has drawing primitives that report the region they changed.
package draw

import (
	"image"
	"image/draw"
)

// Drawer is an alias for [image/draw.Drawer].
type Drawer = draw.Drawer

// Image is an alias for [image/draw.Image].
type Image = draw.Image

// Op is an alias for image/draw.Op
type Op = draw.Op

const (
	// Over specifies ``(src in mask) over dst''.
	Over Op = iota

	// Src specifies ``src in mask''.
	Src
)

// Draw aligns r.Min in dst with sp in src and then replaces the rectangle r
// in dst with the result of a Porter-Duff composition. It returns the part of
// r that lies within dst.
func Draw(dst Image, r image.Rectangle, src image.Image, sp image.Point, op Op) image.Rectangle {
	draw.Draw(dst, r, src, sp, op)
	return r.Intersect(dst.Bounds())
}

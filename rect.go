package eink

import (
	"fmt"
	"image"
)

// Rectangle is an axis aligned region in pixel units. A rectangle with zero
// width or height is empty.
type Rectangle struct {
	Left, Top, Width, Height int
}

// Rect is shorthand for Rectangle{left, top, width, height}.
func Rect(left, top, width, height int) Rectangle {
	return Rectangle{Left: left, Top: top, Width: width, Height: height}
}

// Pt is the 1x1 rectangle at (x, y).
func Pt(x, y int) Rectangle {
	return Rectangle{Left: x, Top: y, Width: 1, Height: 1}
}

// FromImage converts an image rectangle, negative coordinates are clipped to zero.
func FromImage(r image.Rectangle) Rectangle {
	r = r.Canon()
	r.Min.X = max(r.Min.X, 0)
	r.Min.Y = max(r.Min.Y, 0)
	if r.Empty() {
		return Rectangle{}
	}
	return Rectangle{Left: r.Min.X, Top: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Empty reports whether the rectangle contains no pixels.
func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right is the exclusive right edge.
func (r Rectangle) Right() int {
	return r.Left + r.Width
}

// Bottom is the exclusive bottom edge.
func (r Rectangle) Bottom() int {
	return r.Top + r.Height
}

// Contains reports whether (x, y) is inside r.
func (r Rectangle) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Merge returns the smallest rectangle containing both r and s. An empty
// operand is absorbed and the other operand is returned unchanged, two empty
// operands give the zero rectangle.
func (r Rectangle) Merge(s Rectangle) Rectangle {
	switch {
	case r.Empty() && s.Empty():
		return Rectangle{}
	case s.Empty():
		return r
	case r.Empty():
		return s
	}
	var (
		left   = min(r.Left, s.Left)
		top    = min(r.Top, s.Top)
		right  = max(r.Right(), s.Right())
		bottom = max(r.Bottom(), s.Bottom())
	)
	return Rectangle{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Merge is [Rectangle.Merge] as a function.
func Merge(a, b Rectangle) Rectangle {
	return a.Merge(b)
}

// Intersect returns the largest rectangle contained by both r and s, or the
// zero rectangle if they don't overlap.
func (r Rectangle) Intersect(s Rectangle) Rectangle {
	var (
		left   = max(r.Left, s.Left)
		top    = max(r.Top, s.Top)
		right  = min(r.Right(), s.Right())
		bottom = min(r.Bottom(), s.Bottom())
	)
	if right <= left || bottom <= top {
		return Rectangle{}
	}
	return Rectangle{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Clip intersects r with a width x height surface anchored at the origin.
func (r Rectangle) Clip(width, height int) Rectangle {
	return r.Intersect(Rectangle{Width: width, Height: height})
}

// Image converts to an [image.Rectangle].
func (r Rectangle) Image() image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(r.Left, r.Top, r.Right(), r.Bottom())
}

func (r Rectangle) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.Left, r.Top)
}

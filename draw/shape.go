package draw

import (
	"image"
	"image/color"
)

// The shape functions return the bounding box of the pixels they touched,
// clipped to the destination bounds. Callers use it to decide which region of
// a display needs a refresh.

// Line draws a line between two points.
func Line(dst Image, a, b image.Point, c color.Color) image.Rectangle {
	bresenham(dst, a.X, a.Y, b.X, b.Y, c)
	return touched(dst, image.Rect(a.X, a.Y, b.X, b.Y))
}

// ThickLine draws a line between two points with a square pen of the given
// width.
func ThickLine(dst Image, a, b image.Point, width int, c color.Color) image.Rectangle {
	if width <= 1 {
		return Line(dst, a, b, c)
	}
	var (
		lo    = -(width - 1) / 2
		hi    = lo + width
		dirty image.Rectangle
	)
	for dy := lo; dy < hi; dy++ {
		for dx := lo; dx < hi; dx++ {
			d := image.Pt(dx, dy)
			dirty = dirty.Union(Line(dst, a.Add(d), b.Add(d), c))
		}
	}
	return dirty
}

// HorizontalLine draws a line between (x,y) and (x+w,y).
func HorizontalLine(dst Image, x, y, w int, c color.Color) image.Rectangle {
	if w <= 0 {
		return image.Rectangle{}
	}
	bresenham(dst, x, y, x+w-1, y, c)
	return touched(dst, image.Rect(x, y, x+w-1, y))
}

// VerticalLine draws a line between (x,y) and (x,y+h).
func VerticalLine(dst Image, x, y, h int, c color.Color) image.Rectangle {
	if h <= 0 {
		return image.Rectangle{}
	}
	bresenham(dst, x, y, x, y+h-1, c)
	return touched(dst, image.Rect(x, y, x, y+h-1))
}

// Rectangle draws the outline of a rectangle.
func Rectangle(dst Image, rect image.Rectangle, c color.Color) image.Rectangle {
	rect = rect.Canon()
	if rect.Empty() {
		return image.Rectangle{}
	}
	var (
		w = rect.Dx()
		h = rect.Dy()
	)
	HorizontalLine(dst, rect.Min.X, rect.Min.Y, w, c)
	HorizontalLine(dst, rect.Min.X, rect.Max.Y-1, w, c)
	VerticalLine(dst, rect.Min.X, rect.Min.Y, h, c)
	VerticalLine(dst, rect.Max.X-1, rect.Min.Y, h, c)
	return rect.Intersect(dst.Bounds())
}

// Box draws a filled rectangle.
func Box(dst Image, rect image.Rectangle, c color.Color) image.Rectangle {
	rect = rect.Canon().Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, y, c)
		}
	}
	return rect
}

// Dot draws a filled square of the given size centered on p.
func Dot(dst Image, p image.Point, size int, c color.Color) image.Rectangle {
	if size <= 1 {
		dst.Set(p.X, p.Y, c)
		return touched(dst, image.Rectangle{Min: p, Max: p})
	}
	lo := -(size - 1) / 2
	corner := p.Add(image.Pt(lo, lo))
	return Box(dst, image.Rectangle{Min: corner, Max: corner.Add(image.Pt(size, size))}, c)
}

// touched converts an inclusive corner pair to the clipped exclusive bounds.
func touched(dst Image, r image.Rectangle) image.Rectangle {
	r = r.Canon()
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r.Intersect(dst.Bounds())
}

// bresenham plots the line from (x0,y0) to (x1,y1), both ends inclusive.
func bresenham(dst Image, x0, y0, x1, y1 int, c color.Color) {
	var (
		dx = abs(x1 - x0)
		dy = -abs(y1 - y0)
		sx = 1
		sy = 1
	)
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	for e := dx + dy; ; {
		dst.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

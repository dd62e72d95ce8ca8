package eink

import (
	"image"
	"image/color"

	"github.com/BeatGlow/eink/draw"
	"github.com/BeatGlow/eink/pixel"
)

// Canvas exposes the requested color plane of a Buffer as a [draw.Image].
//
// Colors are reduced to palette indices with [pixel.IndexModel]. Nothing
// reaches the panel until the Buffer is flushed.
type Canvas struct {
	b *Buffer
}

// Canvas returns a drawable view of the buffer.
func (b *Buffer) Canvas() *Canvas {
	return &Canvas{b: b}
}

func (c *Canvas) ColorModel() color.Model {
	return pixel.IndexModel
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.b.Bounds().Image()
}

func (c *Canvas) At(x, y int) color.Color {
	i, ok := c.b.Requested(x, y)
	if !ok {
		return color.Transparent
	}
	return pixel.Index{I: i}
}

func (c *Canvas) Set(x, y int, v color.Color) {
	c.b.SetPixel(x, y, pixel.IndexModel.Convert(v).(pixel.Index).I)
}

// Fill requests color v for every pixel of r.
func (c *Canvas) Fill(r image.Rectangle, v color.Color) {
	c.b.SetRect(FromImage(r), pixel.IndexModel.Convert(v).(pixel.Index).I)
}

// Interface checks
var (
	_ draw.Image = (*Canvas)(nil)
)

package draw

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// DefaultDPI matches the pixel density of a 10.3" 1872x1404 panel.
const DefaultDPI = 226

// Text renders strings with a TrueType font.
type Text struct {
	font *truetype.Font
	face font.Face
	size float64
	dpi  float64
}

// NewText parses a TrueType font for rendering at size points. A nil font
// uses Go Regular.
func NewText(ttf []byte, size float64) (*Text, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := freetype.ParseFont(ttf)
	if err != nil {
		return nil, fmt.Errorf("draw: invalid font: %w", err)
	}
	return &Text{
		font: f,
		face: truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     DefaultDPI,
			Hinting: font.HintingFull,
		}),
		size: size,
		dpi:  DefaultDPI,
	}, nil
}

// Height is the distance between two baselines.
func (t *Text) Height() int {
	return t.face.Metrics().Height.Ceil()
}

// Measure returns the bounds of s drawn with its baseline origin at p.
func (t *Text) Measure(p image.Point, s string) image.Rectangle {
	var (
		m = t.face.Metrics()
		w = font.MeasureString(t.face, s)
	)
	return image.Rect(p.X, p.Y-m.Ascent.Ceil(), p.X+w.Ceil(), p.Y+m.Descent.Ceil())
}

// String draws s with its baseline origin at p.
func (t *Text) String(dst Image, p image.Point, s string, c color.Color) (image.Rectangle, error) {
	ctx := freetype.NewContext()
	ctx.SetDPI(t.dpi)
	ctx.SetFont(t.font)
	ctx.SetFontSize(t.size)
	ctx.SetHinting(font.HintingFull)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(c))

	end, err := ctx.DrawString(s, fixed.P(p.X, p.Y))
	if err != nil {
		return image.Rectangle{}, err
	}

	r := t.Measure(p, s)
	r.Max.X = max(r.Max.X, end.X.Ceil())
	return r.Intersect(dst.Bounds()), nil
}

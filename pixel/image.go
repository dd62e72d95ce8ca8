package pixel

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/BeatGlow/eink/draw"
)

// Image is a drawable surface that can be reset in one call.
type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer is the packed backing store shared by the images in this package.
type Buffer struct {
	Rect   image.Rectangle
	Pix    []byte
	Stride int // bytes between vertically adjacent pixels
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	clear(p.Pix)
}

func makeBuffer(w, h, stride int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, stride*h),
		Stride: stride,
	}
}

// MonoImage is a 1-bit per pixel monochrome image.
//
// Pixels are packed most significant bit first, which is the RAM layout of
// SSD16xx e-paper controllers. A set bit is white.
type MonoImage struct {
	Buffer
}

func NewMonoImage(w, h int) *MonoImage {
	return &MonoImage{
		Buffer: makeBuffer(w, h, (w+7)/8),
	}
}

func (p *MonoImage) ColorModel() color.Model {
	return MonoModel
}

// PixOffset returns the index of the byte holding (x, y) and its bit mask.
func (p *MonoImage) PixOffset(x, y int) (int, byte) {
	return y*p.Stride + x/8, 0x80 >> uint(x%8)
}

func (p *MonoImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	index, bit := p.PixOffset(x, y)
	return Mono{On: p.Pix[index]&bit != 0}
}

func (p *MonoImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.SetMono(x, y, monoModel(c).(Mono).On)
}

// SetMono sets the pixel at (x, y) without color conversion.
func (p *MonoImage) SetMono(x, y int, on bool) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	index, bit := p.PixOffset(x, y)
	if on {
		p.Pix[index] |= bit
	} else {
		p.Pix[index] &^= bit
	}
}

func (p *MonoImage) Fill(c color.Color) {
	if !monoModel(c).(Mono).On {
		p.Clear()
		return
	}
	for i := range p.Pix {
		p.Pix[i] = 0xff
	}
}

// RawImage is a 16-bits per pixel image of raw surface samples.
type RawImage struct {
	Buffer
	Order binary.ByteOrder
}

func NewRawImage(w, h int) *RawImage {
	return &RawImage{
		Buffer: makeBuffer(w, h, w*2),
		Order:  binary.NativeEndian,
	}
}

func (p *RawImage) ColorModel() color.Model {
	return RawModel
}

func (p *RawImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return Raw{V: p.RawAt(x, y)}
}

func (p *RawImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.SetRaw(x, y, rawModel(c).(Raw).V)
}

// RawAt returns the sample at (x, y), which must be in bounds.
func (p *RawImage) RawAt(x, y int) uint16 {
	return p.Order.Uint16(p.Pix[(x-p.Rect.Min.X)*2+(y-p.Rect.Min.Y)*p.Stride:])
}

// SetRaw stores a sample at (x, y), which must be in bounds.
func (p *RawImage) SetRaw(x, y int, v uint16) {
	p.Order.PutUint16(p.Pix[(x-p.Rect.Min.X)*2+(y-p.Rect.Min.Y)*p.Stride:], v)
}

func (p *RawImage) Fill(c color.Color) {
	v := rawModel(c).(Raw).V
	w, h := p.Rect.Dx(), p.Rect.Dy()
	for y := 0; y < h; y++ {
		row := p.Pix[y*p.Stride : y*p.Stride+w*2]
		for i := 0; i < len(row); i += 2 {
			p.Order.PutUint16(row[i:], v)
		}
	}
}

// Interface checks.
var (
	_ Image = (*MonoImage)(nil)
	_ Image = (*RawImage)(nil)
)

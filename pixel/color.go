package pixel

import "image/color"

// Models for the standard color types.
var (
	MonoModel  color.Model = color.ModelFunc(monoModel)
	IndexModel color.Model = color.ModelFunc(indexModel)
	RawModel   color.Model = color.ModelFunc(rawModel)
)

var (
	Off = Mono{false}
	On  = Mono{true}
)

// Palette indices for the extremes of the gray ramp.
var (
	Black = Index{0x00}
	White = Index{0xff}
)

// Mono represents a 1-bit monochrome color.
type Mono struct {
	On bool
}

func (c Mono) RGBA() (r, g, b, a uint32) {
	if c.On {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

func monoModel(c color.Color) color.Color {
	switch c := c.(type) {
	case Mono:
		return c
	case Index:
		return Mono{On: c.I >= 0x80}
	}
	r, g, b, _ := c.RGBA()

	// These coefficients (the fractions 0.299, 0.587 and 0.114) are the same
	// as those given by the JFIF specification and used by func RGBToYCbCr in
	// ycbcr.go.
	//
	// Note that 19595 + 38470 + 7471 equals 65536.
	//
	// The 31 is 16 + 15. The 16 is the same as used in RGBToYCbCr. The 15 is
	// because the return value is 1 bit color, not 16 bit color.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 31

	return Mono{On: y != 0}
}

// Index is an 8-bit palette index. Indices are displayed as a gray ramp,
// from black at 0x00 to white at 0xff.
type Index struct {
	I uint8
}

func (c Index) RGBA() (r, g, b, a uint32) {
	y := uint32(c.I)
	y |= y << 8
	return y, y, y, 0xffff
}

func indexModel(c color.Color) color.Color {
	switch c := c.(type) {
	case Index:
		return c
	case Raw:
		return Index{I: uint8(c.V)}
	case Mono:
		if c.On {
			return White
		}
		return Black
	}
	r, g, b, _ := c.RGBA()
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
	return Index{I: uint8(y)}
}

// Raw is a 16-bit sample as stored in surface memory. Surfaces store palette
// indices in the low byte.
type Raw struct {
	V uint16
}

func (c Raw) RGBA() (r, g, b, a uint32) {
	return Index{I: uint8(c.V)}.RGBA()
}

func rawModel(c color.Color) color.Color {
	if c, ok := c.(Raw); ok {
		return c
	}
	return Raw{V: uint16(indexModel(c).(Index).I)}
}

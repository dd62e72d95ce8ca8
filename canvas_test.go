package eink

import (
	"image"
	"image/color"
	"testing"

	"github.com/BeatGlow/eink/draw"
	"github.com/BeatGlow/eink/pixel"
)

func TestCanvas(t *testing.T) {
	b, surface, clock := testBuffer(t, 8, 8, 0)
	c := b.Canvas()

	if r := c.Bounds(); r != image.Rect(0, 0, 8, 8) {
		t.Errorf("expected bounds 8x8, got %s", r)
	}
	if c.ColorModel() != pixel.IndexModel {
		t.Error("expected index color model")
	}

	c.Set(1, 1, pixel.Index{I: 42})
	if v := c.At(1, 1); v != (pixel.Index{I: 42}) {
		t.Errorf("expected index 42, got %v", v)
	}
	c.Set(2, 2, color.White)
	if v, _ := b.Requested(2, 2); v != 0xff {
		t.Errorf("expected white to map to 0xff, got %#02x", v)
	}
	if v := c.At(8, 0); v != color.Transparent {
		t.Errorf("expected transparent outside, got %v", v)
	}

	c.Fill(image.Rect(4, 4, 10, 10), color.Black)
	if v, _ := b.Requested(7, 7); v != 0 {
		t.Errorf("expected black fill, got %d", v)
	}

	dirty := FromImage(draw.Line(c, image.Pt(0, 7), image.Pt(3, 7), pixel.Index{I: 9}))
	if want := Rect(0, 7, 4, 1); dirty != want {
		t.Errorf("expected line bounds %s, got %s", want, dirty)
	}

	clock.set(0)
	b.Flush(dirty)
	for x := 0; x < 4; x++ {
		if v := surface.at(x, 7); v != 9 {
			t.Errorf("expected (%d,7) to be 9 on the surface, got %d", x, v)
		}
	}
	if v := surface.at(1, 1); v != 0 {
		t.Errorf("expected (1,1) not to be flushed, got %d", v)
	}
}

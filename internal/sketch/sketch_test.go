package sketch

import (
	"image"
	"image/color"
	"testing"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/input"
)

const testSize = 100

// testState is a pen report at screen position (x, y) on a testSize square.
func testState(x, y int, touching, eraser bool) input.State {
	s := input.State{
		X: input.Axis{Max: testSize, Raw: int32(testSize - y)},
		Y: input.Axis{Max: testSize, Raw: int32(x)},
	}
	if touching {
		s.Touching = 1
	}
	if eraser {
		s.Eraser = 1
	}
	return s
}

func testStroke() (*Stroke, *image.Gray) {
	dst := image.NewGray(image.Rect(0, 0, testSize, testSize))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}
	return &Stroke{Ink: color.Black, Paper: color.White, Width: 1}, dst
}

func TestStrokeHover(t *testing.T) {
	k, dst := testStroke()
	dirty := k.Apply(dst, testState(40, 40, false, false), testSize, testSize, eink.Rectangle{})
	if !dirty.Empty() {
		t.Errorf("expected nothing drawn while hovering, got %s", dirty)
	}
	if k.Down() {
		t.Error("expected pen up")
	}
}

func TestStrokeLine(t *testing.T) {
	k, dst := testStroke()

	var dirty eink.Rectangle
	dirty = k.Apply(dst, testState(40, 40, true, false), testSize, testSize, dirty)
	if want := eink.Pt(40, 40); dirty != want {
		t.Errorf("expected %s, got %s", want, dirty)
	}
	if v := dst.GrayAt(40, 40).Y; v != 0x00 {
		t.Errorf("expected ink at first point, got %#02x", v)
	}

	dirty = k.Apply(dst, testState(60, 40, true, false), testSize, testSize, dirty)
	if want := eink.Rect(40, 40, 21, 1); dirty != want {
		t.Errorf("expected %s, got %s", want, dirty)
	}
	for x := 40; x <= 60; x++ {
		if v := dst.GrayAt(x, 40).Y; v != 0x00 {
			t.Fatalf("expected ink at (%d,40), got %#02x", x, v)
		}
	}

	// Lifting the pen ends the stroke, the next touch starts a new one.
	dirty = k.Apply(dst, testState(60, 80, false, false), testSize, testSize, eink.Rectangle{})
	if !dirty.Empty() || k.Down() {
		t.Errorf("expected pen up without drawing, got %s", dirty)
	}
	dirty = k.Apply(dst, testState(50, 80, true, false), testSize, testSize, dirty)
	if want := eink.Pt(50, 80); dirty != want {
		t.Errorf("expected a new dot at %s, got %s", want, dirty)
	}
}

func TestStrokeEraser(t *testing.T) {
	k, dst := testStroke()
	for i := range dst.Pix {
		dst.Pix[i] = 0x00
	}
	k.Width = 2

	dirty := k.Apply(dst, testState(50, 50, true, true), testSize, testSize, eink.Rect(0, 0, 1, 1))
	if want := eink.Rect(0, 0, 54, 54); dirty != want {
		t.Errorf("expected accumulator %s, got %s", want, dirty)
	}
	if v := dst.GrayAt(50, 50).Y; v != 0xff {
		t.Errorf("expected paper at eraser position, got %#02x", v)
	}
	if v := dst.GrayAt(48, 53).Y; v != 0xff {
		t.Errorf("expected eraser to be 6 pixels wide, got %#02x at (48,53)", v)
	}
	if v := dst.GrayAt(47, 47).Y; v != 0x00 {
		t.Errorf("expected ink outside the eraser, got %#02x", v)
	}
}

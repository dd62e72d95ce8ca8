package draw

import (
	"image"
	"image/color"
	"testing"
)

func testCount(i *image.Gray, r image.Rectangle) (inside, outside int) {
	b := i.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i.GrayAt(x, y).Y == 0 {
				continue
			}
			if (image.Point{X: x, Y: y}).In(r) {
				inside++
			} else {
				outside++
			}
		}
	}
	return
}

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		a, b image.Point
		want image.Rectangle
		n    int
	}{
		{"point", image.Pt(3, 3), image.Pt(3, 3), image.Rect(3, 3, 4, 4), 1},
		{"horizontal", image.Pt(1, 2), image.Pt(8, 2), image.Rect(1, 2, 9, 3), 8},
		{"vertical-up", image.Pt(4, 9), image.Pt(4, 0), image.Rect(4, 0, 5, 10), 10},
		{"diagonal", image.Pt(0, 0), image.Pt(5, 5), image.Rect(0, 0, 6, 6), 6},
		{"steep", image.Pt(7, 1), image.Pt(5, 9), image.Rect(5, 1, 8, 10), 9},
		{"clipped", image.Pt(-5, 0), image.Pt(3, 0), image.Rect(0, 0, 4, 1), 4},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			i := image.NewGray(image.Rect(0, 0, 16, 16))
			r := Line(i, test.a, test.b, color.White)
			if r != test.want {
				t.Errorf("expected bounds %s, got %s", test.want, r)
			}
			inside, outside := testCount(i, r)
			if outside != 0 {
				t.Errorf("expected no pixels outside %s, got %d", r, outside)
			}
			if inside != test.n {
				t.Errorf("expected %d pixels, got %d", test.n, inside)
			}
		})
	}
}

func TestThickLine(t *testing.T) {
	i := image.NewGray(image.Rect(0, 0, 16, 16))
	r := ThickLine(i, image.Pt(5, 5), image.Pt(10, 5), 3, color.White)
	if want := image.Rect(4, 4, 12, 7); r != want {
		t.Errorf("expected bounds %s, got %s", want, r)
	}
	if inside, outside := testCount(i, r); inside != 8*3 || outside != 0 {
		t.Errorf("expected 24 pixels inside, got %d inside and %d outside", inside, outside)
	}
}

func TestRectangle(t *testing.T) {
	i := image.NewGray(image.Rect(0, 0, 16, 16))
	r := Rectangle(i, image.Rect(2, 3, 6, 8), color.White)
	if want := image.Rect(2, 3, 6, 8); r != want {
		t.Errorf("expected bounds %s, got %s", want, r)
	}
	if inside, outside := testCount(i, r); inside != 2*4+2*3 || outside != 0 {
		t.Errorf("expected 14 outline pixels, got %d inside and %d outside", inside, outside)
	}
	if i.GrayAt(3, 4).Y != 0 {
		t.Error("expected rectangle interior to stay empty")
	}
}

func TestBox(t *testing.T) {
	i := image.NewGray(image.Rect(0, 0, 8, 8))
	r := Box(i, image.Rect(6, 6, 12, 12), color.White)
	if want := image.Rect(6, 6, 8, 8); r != want {
		t.Errorf("expected bounds %s, got %s", want, r)
	}
	if inside, _ := testCount(i, r); inside != 4 {
		t.Errorf("expected 4 pixels, got %d", inside)
	}
}

func TestDot(t *testing.T) {
	i := image.NewGray(image.Rect(0, 0, 8, 8))
	if r := Dot(i, image.Pt(4, 4), 1, color.White); r != image.Rect(4, 4, 5, 5) {
		t.Errorf("expected single pixel bounds, got %s", r)
	}
	if r := Dot(i, image.Pt(4, 4), 3, color.White); r != image.Rect(3, 3, 6, 6) {
		t.Errorf("expected 3x3 bounds, got %s", r)
	}
}

func TestText(t *testing.T) {
	text, err := NewText(nil, 12)
	if err != nil {
		t.Fatal(err)
	}
	if text.Height() <= 0 {
		t.Fatalf("expected positive line height, got %d", text.Height())
	}

	i := image.NewGray(image.Rect(0, 0, 320, 80))
	origin := image.Pt(4, 50)
	r, err := text.String(i, origin, "Hello", color.White)
	if err != nil {
		t.Fatal(err)
	}
	if r.Empty() {
		t.Fatal("expected non-empty text bounds")
	}
	if m := text.Measure(origin, "Hello"); !m.Intersect(i.Bounds()).In(r) {
		t.Errorf("expected measured bounds %s within drawn bounds %s", m, r)
	}
	inside, outside := testCount(i, r)
	if inside == 0 {
		t.Error("expected text pixels to be drawn")
	}
	if outside != 0 {
		t.Errorf("expected no text pixels outside %s, got %d", r, outside)
	}
}

func TestTextInvalidFont(t *testing.T) {
	if _, err := NewText([]byte("not a font"), 12); err == nil {
		t.Error("expected an error for invalid font data")
	}
}

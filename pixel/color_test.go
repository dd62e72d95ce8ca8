package pixel

import (
	"image/color"
	"testing"
)

func TestMono(t *testing.T) {
	for y := 0; y < 2; y++ {
		t.Run("", func(it *testing.T) {
			c := Off
			if y > 0 {
				c = On
			}
			r, g, b, _ := c.RGBA()
			y *= 0xF
			want := uint32(y | y<<4 | y<<8 | y<<12)
			if r != want {
				t.Errorf("expected red to be %#04x, got %#04x", want, r)
			}
			if g != want {
				t.Errorf("expected green to be %#04x, got %#04x", want, g)
			}
			if b != want {
				t.Errorf("expected blue to be %#04x, got %#04x", want, b)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	for i := 0; i < 256; i++ {
		c := Index{I: uint8(i)}
		r, g, b, a := c.RGBA()
		want := uint32(i | i<<8)
		if r != want || g != want || b != want {
			t.Fatalf("index %d: expected gray %#04x, got %#04x %#04x %#04x", i, want, r, g, b)
		}
		if a != 0xffff {
			t.Fatalf("index %d: expected opaque, got alpha %#04x", i, a)
		}
		if v := IndexModel.Convert(color.Gray16{Y: uint16(want)}); v != c {
			t.Fatalf("index %d: gray round trip gave %#+v", i, v)
		}
	}
}

func TestIndexModel(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want Index
	}{
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"mono-on", On, White},
		{"mono-off", Off, Black},
		{"raw-low-byte", Raw{V: 0x12c8}, Index{I: 0xc8}},
		{"index", Index{I: 42}, Index{I: 42}},
		{"gray", color.Gray{Y: 0x80}, Index{I: 0x80}},
	}
	for _, test := range tests {
		t.Run(test.name, func(it *testing.T) {
			if v := IndexModel.Convert(test.c); v != test.want {
				it.Errorf("expected %#+v, got %#+v", test.want, v)
			}
		})
	}
}

func TestMonoModelThreshold(t *testing.T) {
	if v := MonoModel.Convert(Index{I: 0x7f}); v != Off {
		t.Errorf("expected index 0x7f to be off, got %#+v", v)
	}
	if v := MonoModel.Convert(Index{I: 0x80}); v != On {
		t.Errorf("expected index 0x80 to be on, got %#+v", v)
	}
}

func TestRawModel(t *testing.T) {
	if v := RawModel.Convert(Index{I: 200}); v != (Raw{V: 200}) {
		t.Errorf("expected raw 200, got %#+v", v)
	}
	if v := RawModel.Convert(Raw{V: 0xbeef}); v != (Raw{V: 0xbeef}) {
		t.Errorf("expected raw samples to pass through, got %#+v", v)
	}
}

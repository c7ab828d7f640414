package pixel

import (
	"image/color"
	"testing"
)

func TestRGBRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 3 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 7 {
				c := RGB(uint8(r), uint8(g), uint8(b))
				r2, g2, b2 := c.RGB()
				if d := absDiff(uint8(r), r2); d > 7 {
					t.Fatalf("red %d: expected error <= 7, got %d", r, d)
				}
				if d := absDiff(uint8(g), g2); d > 3 {
					t.Fatalf("green %d: expected error <= 3, got %d", g, d)
				}
				if d := absDiff(uint8(b), b2); d > 7 {
					t.Fatalf("blue %d: expected error <= 7, got %d", b, d)
				}
			}
		}
	}
}

func TestRGBExtremesExact(t *testing.T) {
	if c := RGB(255, 255, 255); c != White {
		t.Fatalf("expected white %#04x, got %#04x", White, c)
	}
	if r, g, b := White.RGB(); r != 255 || g != 255 || b != 255 {
		t.Fatalf("expected 255,255,255, got %d,%d,%d", r, g, b)
	}
	if r, g, b := Black.RGB(); r != 0 || g != 0 || b != 0 {
		t.Fatalf("expected 0,0,0, got %d,%d,%d", r, g, b)
	}
}

func TestNamedColors(t *testing.T) {
	tests := []struct {
		c    Color
		want Color
	}{
		{RGB(255, 0, 0), Red},
		{RGB(0, 255, 0), Green},
		{RGB(0, 0, 255), Blue},
		{RGB(255, 255, 0), Yellow},
		{RGB(0, 255, 255), Cyan},
		{RGB(255, 0, 255), Magenta},
	}
	for _, tc := range tests {
		if tc.c != tc.want {
			t.Fatalf("expected %#04x, got %#04x", tc.want, tc.c)
		}
	}
}

func TestBlendEndpoints(t *testing.T) {
	fg, bg := AccentOrange, PrimaryBlue
	if got := Blend(fg, bg, 0); got != bg {
		t.Fatalf("alpha 0: expected %#04x, got %#04x", bg, got)
	}
	if got := Blend(fg, bg, 255); got != fg {
		t.Fatalf("alpha 255: expected %#04x, got %#04x", fg, got)
	}
}

func TestBlendMonotonic(t *testing.T) {
	fg, bg := White, Black
	prevR, prevG, prevB := bg.RGB()
	for a := 1; a < 256; a++ {
		r, g, b := Blend(fg, bg, uint8(a)).RGB()
		if r < prevR || g < prevG || b < prevB {
			t.Fatalf("alpha %d: expected channels to not decrease, got %d,%d,%d after %d,%d,%d", a, r, g, b, prevR, prevG, prevB)
		}
		prevR, prevG, prevB = r, g, b
	}

	fg, bg = Black, White
	prevR, prevG, prevB = bg.RGB()
	for a := 1; a < 256; a++ {
		r, g, b := Blend(fg, bg, uint8(a)).RGB()
		if r > prevR || g > prevG || b > prevB {
			t.Fatalf("alpha %d: expected channels to not increase", a)
		}
		prevR, prevG, prevB = r, g, b
	}
}

func TestScale(t *testing.T) {
	if got := White.Scale(100); got != White {
		t.Fatalf("expected white, got %#04x", got)
	}
	if got := White.Scale(0); got != Black {
		t.Fatalf("expected black, got %#04x", got)
	}
	r, _, _ := Red.Scale(50).RGB()
	if r < 120 || r > 135 {
		t.Fatalf("expected half red near 127, got %d", r)
	}
}

func TestColorModel(t *testing.T) {
	got := Model.Convert(color.RGBA{R: 255, A: 255})
	if got != Red {
		t.Fatalf("expected red, got %v", got)
	}
	if FromColor(TextSecondary) != TextSecondary {
		t.Fatal("expected Color to pass through FromColor unchanged")
	}
}

func TestByteOrder(t *testing.T) {
	buf := make([]byte, 4)
	n := BigEndian.Encode(buf, []Color{0x1234, 0xABCD})
	if n != 4 || buf[0] != 0x12 || buf[1] != 0x34 || buf[2] != 0xAB || buf[3] != 0xCD {
		t.Fatalf("expected 12 34 ab cd, got % x (n=%d)", buf, n)
	}
	LittleEndian.Encode(buf, []Color{0x1234, 0xABCD})
	if buf[0] != 0x34 || buf[1] != 0x12 {
		t.Fatalf("expected 34 12, got % x", buf[:2])
	}
	if got := LittleEndian.Get(buf[2:]); got != 0xABCD {
		t.Fatalf("expected 0xabcd, got %#04x", got)
	}
	if n := BigEndian.Encode(buf[:3], []Color{1, 2, 3}); n != 2 {
		t.Fatalf("expected truncation to 2 bytes, got %d", n)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

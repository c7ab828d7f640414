// Package font5x7 is the fixed 5x7 bitmap font used for all panel text.
package font5x7

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

const (
	// Width and Height are the glyph cell size in pixels at scale 1.
	Width  = 5
	Height = 7
	// Spacing is the blank column between glyphs.
	Spacing = 1
)

// Font implements tinyfont.Fonter. The baseline passed to Draw is the
// bottom row of the glyph cell.
var Font tinyfont.Fonter = font{}

type font struct{}

func (font) GetYAdvance() uint8 { return Height + 1 }

func (font) GetGlyph(r rune) tinyfont.Glypher { return glyph(r) }

type glyph rune

func (g glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	cols := Columns(rune(g))
	for col := 0; col < Width; col++ {
		bits := cols[col]
		for row := 0; row < Height; row++ {
			if bits&(1<<row) == 0 {
				continue
			}
			display.SetPixel(x+int16(col), y-int16(Height-1-row), c)
		}
	}
}

func (g glyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     rune(g),
		Width:    Width,
		Height:   Height,
		XAdvance: Width + Spacing,
		YOffset:  -(Height - 1),
	}
}

// Columns returns the column bitmap for r. Runes outside printable ASCII
// render as '?'.
func Columns(r rune) [Width]byte {
	if r < 0x20 || r > 0x7E {
		r = '?'
	}
	return glyphs[r-0x20]
}

// Advance is the horizontal distance between glyph origins at scale.
func Advance(scale int) int {
	if scale < 1 {
		scale = 1
	}
	return Width*scale + Spacing
}

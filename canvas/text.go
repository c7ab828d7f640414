package canvas

import (
	"image"
	"image/color"

	"lcdpipe/font5x7"
	"lcdpipe/pixel"

	"tinygo.org/x/tinyfont"
)

// TextStyle selects glyph color, optional background and integer scale.
type TextStyle struct {
	Color      pixel.Color
	Background pixel.Color
	// Opaque fills the glyph cell with Background before drawing.
	Opaque bool
	Scale  int
}

func (st TextStyle) scale() int {
	if st.Scale < 1 {
		return 1
	}
	return st.Scale
}

// TextWidth is the horizontal extent of s at scale.
func TextWidth(s string, scale int) int {
	n := 0
	for range s {
		n++
	}
	return n * font5x7.Advance(scale)
}

// Char draws one glyph with its top-left corner at (x, y).
func (c *Canvas) Char(x, y int, r rune, st TextStyle) image.Rectangle {
	s := st.scale()
	cell := image.Rect(x, y, x+font5x7.Width*s, y+font5x7.Height*s).Intersect(c.Bounds())
	if cell.Empty() {
		return image.Rectangle{}
	}
	if st.Opaque {
		c.FillRect(x, y, font5x7.Width*s, font5x7.Height*s, st.Background)
	}
	d := &glyphScaler{c: c, x: x, y: y, scale: s, col: st.Color}
	tinyfont.DrawChar(d, font5x7.Font, 0, font5x7.Height-1, r, st.Color.NRGBA())
	return cell
}

// Text draws s left to right starting at (x, y). Drawing stops at the
// first glyph that would not fit horizontally.
func (c *Canvas) Text(x, y int, s string, st TextStyle) image.Rectangle {
	adv := font5x7.Advance(st.scale())
	var out image.Rectangle
	for _, r := range s {
		if x+adv > c.w {
			break
		}
		out = out.Union(c.Char(x, y, r, st))
		x += adv
	}
	return out
}

// TextCentered draws s horizontally centered on row y. Text wider than
// the canvas starts at the left edge.
func (c *Canvas) TextCentered(y int, s string, st TextStyle) image.Rectangle {
	x := (c.w - TextWidth(s, st.scale())) / 2
	if x < 0 {
		x = 0
	}
	return c.Text(x, y, s, st)
}

// glyphScaler maps glyph-local pixels onto scale x scale blocks.
type glyphScaler struct {
	c     *Canvas
	x, y  int
	scale int
	col   pixel.Color
}

func (g *glyphScaler) Size() (int16, int16) {
	return font5x7.Width, font5x7.Height
}

func (g *glyphScaler) SetPixel(x, y int16, _ color.RGBA) {
	g.c.FillRect(g.x+int(x)*g.scale, g.y+int(y)*g.scale, g.scale, g.scale, g.col)
}

func (g *glyphScaler) Display() error { return nil }

// Package canvas implements the in-memory RGB565 drawing surface shared by
// every backend. All primitives clip to the canvas; nothing outside it is
// ever written.
package canvas

import (
	"image"
	"image/color"
	"math"

	"lcdpipe/pixel"
)

// Reader is a read-only view of a canvas.
type Reader interface {
	Width() int
	Height() int
	PixelAt(x, y int) pixel.Color
	// Row returns pixels [x0, x1) of row y. The slice aliases the canvas
	// and must not be modified.
	Row(y, x0, x1 int) []pixel.Color
}

// Canvas is a flat row-major pixel array of fixed size.
type Canvas struct {
	w, h int
	pix  []pixel.Color
}

// New allocates a w x h canvas filled with black.
func New(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Canvas{w: w, h: h, pix: make([]pixel.Color, w*h)}
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

// Bounds implements image.Image.
func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.w, c.h) }

// ColorModel implements image.Image.
func (c *Canvas) ColorModel() color.Model { return pixel.Model }

// At implements image.Image.
func (c *Canvas) At(x, y int) color.Color { return c.PixelAt(x, y) }

// PixelAt returns black outside the canvas.
func (c *Canvas) PixelAt(x, y int) pixel.Color {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return pixel.Black
	}
	return c.pix[y*c.w+x]
}

func (c *Canvas) Row(y, x0, x1 int) []pixel.Color {
	if y < 0 || y >= c.h {
		return nil
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > c.w {
		x1 = c.w
	}
	if x0 >= x1 {
		return nil
	}
	return c.pix[y*c.w+x0 : y*c.w+x1]
}

// CopyFrom copies every pixel of src. Sizes must match; a mismatched
// source leaves c untouched and returns false.
func (c *Canvas) CopyFrom(src *Canvas) bool {
	if src.w != c.w || src.h != c.h {
		return false
	}
	copy(c.pix, src.pix)
	return true
}

// Set writes one pixel and reports whether it was inside the canvas.
func (c *Canvas) Set(x, y int, col pixel.Color) bool {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return false
	}
	c.pix[y*c.w+x] = col
	return true
}

// Fill paints the whole canvas.
func (c *Canvas) Fill(col pixel.Color) image.Rectangle {
	for i := range c.pix {
		c.pix[i] = col
	}
	return c.Bounds()
}

// FillRect paints the clipped rectangle and returns what was painted.
func (c *Canvas) FillRect(x, y, w, h int, col pixel.Color) image.Rectangle {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.Bounds())
	if w <= 0 || h <= 0 || r.Empty() {
		return image.Rectangle{}
	}
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		row := c.pix[yy*c.w+r.Min.X : yy*c.w+r.Max.X]
		for i := range row {
			row[i] = col
		}
	}
	return r
}

// Rect draws a one pixel outline.
func (c *Canvas) Rect(x, y, w, h int, col pixel.Color) image.Rectangle {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	x1, y1 := x+w-1, y+h-1
	r := c.Line(x, y, x1, y, col)
	r = r.Union(c.Line(x, y1, x1, y1, col))
	r = r.Union(c.Line(x, y, x, y1, col))
	return r.Union(c.Line(x1, y, x1, y1, col))
}

// Line draws the segment from (x0, y0) to (x1, y1). Only the major-axis
// steps that fall on the canvas are visited.
func (c *Canvas) Line(x0, y0, x1, y1 int, col pixel.Color) image.Rectangle {
	bounds := image.Rect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1).Intersect(c.Bounds())
	if bounds.Empty() {
		return image.Rectangle{}
	}
	dx, dy := int64(x1)-int64(x0), int64(y1)-int64(y0)
	if dx == 0 && dy == 0 {
		c.Set(x0, y0, col)
		return bounds
	}
	if abs64(dx) >= abs64(dy) {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			y := int64(y0) + roundDiv((int64(x)-int64(x0))*dy, dx)
			c.Set(x, int(y), col)
		}
		return bounds
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		x := int64(x0) + roundDiv((int64(y)-int64(y0))*dx, dy)
		c.Set(int(x), y, col)
	}
	return bounds
}

// Circle draws the outline of the disc FillCircle paints: every disc pixel
// with a horizontal or vertical neighbour outside it.
func (c *Canvas) Circle(cx, cy, radius int, col pixel.Color) image.Rectangle {
	r := circleBounds(cx, cy, radius).Intersect(c.Bounds())
	if radius < 0 || r.Empty() {
		return image.Rectangle{}
	}
	rr := int64(radius) * int64(radius)
	half := func(dy int64) int64 {
		if dy > int64(radius) {
			return -1
		}
		return isqrt(rr - dy*dy)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dy := abs64(int64(y) - int64(cy))
		outer := half(dy)
		inner := min(half(dy+1)+1, outer)
		n := int(outer - inner + 1)
		c.FillRect(cx-int(outer), y, n, 1, col)
		c.FillRect(cx+int(inner), y, n, 1, col)
	}
	return r
}

// FillCircle paints a disc as one horizontal span per canvas row.
func (c *Canvas) FillCircle(cx, cy, radius int, col pixel.Color) image.Rectangle {
	r := circleBounds(cx, cy, radius).Intersect(c.Bounds())
	if radius < 0 || r.Empty() {
		return image.Rectangle{}
	}
	rr := int64(radius) * int64(radius)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dy := int64(y) - int64(cy)
		dx := int(isqrt(rr - dy*dy))
		c.FillRect(cx-dx, y, 2*dx+1, 1, col)
	}
	return r
}

func circleBounds(cx, cy, radius int) image.Rectangle {
	return image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1)
}

// ProgressBar draws a bordered bar filled to percent (clamped to 100).
func (c *Canvas) ProgressBar(x, y, w, h int, percent uint8, fg, bg, border pixel.Color) image.Rectangle {
	if w < 3 || h < 3 {
		return image.Rectangle{}
	}
	if percent > 100 {
		percent = 100
	}
	r := c.FillRect(x+1, y+1, w-2, h-2, bg)
	if fill := (w - 2) * int(percent) / 100; fill > 0 {
		c.FillRect(x+1, y+1, fill, h-2, fg)
	}
	return r.Union(c.Rect(x, y, w, h, border))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// roundDiv is n/d rounded half away from zero.
func roundDiv(n, d int64) int64 {
	if d < 0 {
		n, d = -n, -d
	}
	if n >= 0 {
		return (2*n + d) / (2 * d)
	}
	return -((-2*n + d) / (2 * d))
}

// isqrt is the largest s with s*s <= v.
func isqrt(v int64) int64 {
	if v <= 0 {
		return 0
	}
	s := int64(math.Sqrt(float64(v)))
	for s*s > v {
		s--
	}
	for (s+1)*(s+1) <= v {
		s++
	}
	return s
}

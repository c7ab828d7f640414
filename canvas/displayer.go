package canvas

import (
	"image/color"

	"lcdpipe/pixel"
)

// Size, SetPixel and Display let tinygo drivers and tinyfont render onto
// the canvas directly.

func (c *Canvas) Size() (int16, int16) { return int16(c.w), int16(c.h) }

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.Set(int(x), int(y), pixel.FromColor(col))
}

func (c *Canvas) Display() error { return nil }

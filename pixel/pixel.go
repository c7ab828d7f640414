// Package pixel defines the RGB565 color type used at every pipeline boundary.
package pixel

import "image/color"

// Color is a packed 16bpp pixel: rrrrrggggggbbbbb.
type Color uint16

// Basic colors.
const (
	Black   Color = 0x0000
	White   Color = 0xFFFF
	Red     Color = 0xF800
	Green   Color = 0x07E0
	Blue    Color = 0x001F
	Yellow  Color = 0xFFE0
	Cyan    Color = 0x07FF
	Magenta Color = 0xF81F
	Gray    Color = 0x8410
)

// Theme colors used by the dashboard screens.
const (
	PrimaryBlue   Color = 0x2589
	PrimaryGreen  Color = 0x07E5
	PrimaryRed    Color = 0xF800
	PrimaryPurple Color = 0x7817
	SurfaceDark   Color = 0x10A2
	SurfaceLight  Color = 0x3186
	TextPrimary   Color = 0xFFFF
	TextSecondary Color = 0xBDF7
	Border        Color = 0x4208
	AccentOrange  Color = 0xC260
)

// RGB packs 8-bit channels, truncating to 5-6-5.
func RGB(r, g, b uint8) Color {
	rr := Color(r>>3) & 0x1F
	gg := Color(g>>2) & 0x3F
	bb := Color(b>>3) & 0x1F
	return rr<<11 | gg<<5 | bb
}

// RGB expands the color to 8-bit channels by bit replication, so that
// pure white and pure black survive a round trip exactly.
func (c Color) RGB() (r, g, b uint8) {
	rr := uint8(c>>11) & 0x1F
	gg := uint8(c>>5) & 0x3F
	bb := uint8(c) & 0x1F
	return rr<<3 | rr>>2, gg<<2 | gg>>4, bb<<3 | bb>>2
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	r = uint32(r8)
	r |= r << 8
	g = uint32(g8)
	g |= g << 8
	b = uint32(b8)
	b |= b << 8
	return r, g, b, 0xFFFF
}

// NRGBA returns the color as an opaque color.RGBA.
func (c Color) NRGBA() color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// FromColor converts any color.Color, dropping alpha.
func FromColor(c color.Color) Color {
	if p, ok := c.(Color); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts arbitrary colors to Color.
var Model = color.ModelFunc(func(c color.Color) color.Color { return FromColor(c) })

// Blend mixes fg over bg. Alpha 0 yields bg and alpha 255 yields fg exactly.
func Blend(fg, bg Color, alpha uint8) Color {
	switch alpha {
	case 0:
		return bg
	case 255:
		return fg
	}
	fr, fgc, fb := fg.RGB()
	br, bgc, bb := bg.RGB()
	a := uint16(alpha)
	mix := func(f, b uint8) uint8 {
		return uint8((uint16(f)*a + uint16(b)*(255-a)) / 255)
	}
	return RGB(mix(fr, br), mix(fgc, bgc), mix(fb, bb))
}

// Interpolate walks from a to b; t is clamped to [0, 1].
func Interpolate(a, b Color, t float32) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Blend(b, a, uint8(t*255))
}

// Scale adjusts brightness to percent (0..100) of the original.
func (c Color) Scale(percent uint8) Color {
	if percent >= 100 {
		return c
	}
	r, g, b := c.RGB()
	p := uint16(percent)
	return RGB(uint8(uint16(r)*p/100), uint8(uint16(g)*p/100), uint8(uint16(b)*p/100))
}

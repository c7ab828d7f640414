package app

import (
	"fmt"
	"time"

	"lcdpipe/backend"
	"lcdpipe/canvas"
	"lcdpipe/pixel"
)

const (
	headerH = 20
	dotY    = 128
	dotR    = 8
)

var (
	headerText = canvas.TextStyle{Color: pixel.TextPrimary, Background: pixel.PrimaryBlue, Opaque: true, Scale: 1}
	valueText  = canvas.TextStyle{Color: pixel.TextPrimary, Background: pixel.SurfaceDark, Opaque: true, Scale: 2}
	labelText  = canvas.TextStyle{Color: pixel.TextSecondary, Scale: 1}
	footText   = canvas.TextStyle{Color: pixel.TextSecondary, Background: pixel.SurfaceDark, Opaque: true, Scale: 1}
)

// dashboard remembers what it drew last so each frame touches only the
// areas that change.
type dashboard struct {
	dotX int
	hue  int
}

func (d *dashboard) layout(b backend.Backend, title string) {
	w := b.Width()
	b.Clear(pixel.SurfaceDark)
	b.FillRect(0, 0, w, headerH, pixel.PrimaryBlue)
	b.DrawText(6, 7, title, headerText)
	name := b.Name()
	b.DrawText(w-6-canvas.TextWidth(name, 1), 7, name, headerText)

	b.DrawText(10, 30, "UPTIME", labelText)
	b.DrawText(170, 30, "FPS", labelText)
	b.DrawText(10, 78, "LOAD", labelText)
	b.DrawRect(4, 24, w-8, 78, pixel.Border)
	b.DrawLine(160, 26, 160, 72, pixel.Border)
	d.dotX = -1
}

func (d *dashboard) draw(b backend.Backend, frame uint64, up time.Duration) {
	up = up.Truncate(time.Second)
	h, m, s := int(up.Hours()), int(up.Minutes())%60, int(up.Seconds())%60
	b.DrawText(10, 44, fmt.Sprintf("%02d:%02d:%02d", h, m, s), valueText)

	fps := "--.-"
	if v, ok := b.FPS(); ok {
		fps = fmt.Sprintf("%.1f", v)
	}
	b.DrawText(170, 44, fmt.Sprintf("%-6s", fps), valueText)

	load := uint8(frame % 101)
	b.DrawProgressBar(10, 90, b.Width()-20, 8, load, pixel.PrimaryGreen, pixel.Black, pixel.Border)

	w := b.Width()
	span := w - 2*dotR - 2
	x := dotR + 1 + int(frame*3%uint64(2*span))
	if x > span+dotR {
		x = 2*(span+dotR) - x
	}
	if d.dotX >= 0 {
		b.FillCircle(d.dotX, dotY, dotR, pixel.SurfaceDark)
	}
	d.hue = (d.hue + 4) % 256
	c := pixel.Interpolate(pixel.PrimaryRed, pixel.PrimaryPurple, float32(d.hue)/255)
	b.FillCircle(x, dotY, dotR, c)
	d.dotX = x

	b.DrawTextCentered(b.Height()-12, fmt.Sprintf("frame %-8d", frame), footText)
}

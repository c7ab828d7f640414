package backend

import (
	"image"
	"time"

	"lcdpipe/canvas"
	"lcdpipe/dirty"
	"lcdpipe/hal"
	"lcdpipe/panel"
	"lcdpipe/pixel"
	"lcdpipe/power"
	"lcdpipe/transfer"
)

// core is what both variants share: drawing into the current canvas,
// dirty tracking, activity, metrics and the frame rate.
type core struct {
	cfg   Config
	name  string
	ctl   *panel.Controller
	w     *transfer.Writer
	clock hal.Clock
	log   hal.Logger
	dim   *power.Dimmer
	track *dirty.Tracker

	cv *canvas.Canvas

	m        Metrics
	fps      float64
	measured bool
	held     error
	closed   bool
}

func (c *core) base() *core { return c }

func (c *core) Width() int   { return c.cv.Width() }
func (c *core) Height() int  { return c.cv.Height() }
func (c *core) Name() string { return c.name }
func (c *core) Kind() Kind   { return c.cfg.Kind }

// Config returns the configuration the backend was built with.
func (c *core) Config() Config { return c.cfg }

// Panel exposes the controller for status and address mode changes.
func (c *core) Panel() *panel.Controller { return c.ctl }

// Dimmer exposes auto-dim state.
func (c *core) Dimmer() *power.Dimmer { return c.dim }

func (c *core) FPS() (float64, bool) { return c.fps, c.measured }

func (c *core) Metrics() Metrics {
	m := c.m
	if c.track != nil {
		m.Dirty = c.track.Stats()
	}
	m.Transfer = c.w.Stats()
	return m
}

func (c *core) drew(r image.Rectangle) {
	c.m.DrawCalls++
	if !r.Empty() {
		c.m.PixelsDrawn += uint64(r.Dx() * r.Dy())
		if c.track != nil {
			c.track.Add(r)
		}
	}
	c.touch()
}

func (c *core) touch() {
	if err := c.dim.Touch(); err != nil && c.held == nil {
		c.held = err
	}
}

func (c *core) Clear(col pixel.Color) {
	c.m.Clears++
	c.drew(c.cv.Fill(col))
}

func (c *core) DrawPixel(x, y int, col pixel.Color) {
	r := image.Rectangle{}
	if c.cv.Set(x, y, col) {
		r = image.Rect(x, y, x+1, y+1)
	}
	c.drew(r)
}

func (c *core) DrawLine(x0, y0, x1, y1 int, col pixel.Color) {
	c.drew(c.cv.Line(x0, y0, x1, y1, col))
}

func (c *core) DrawRect(x, y, w, h int, col pixel.Color)  { c.drew(c.cv.Rect(x, y, w, h, col)) }
func (c *core) FillRect(x, y, w, h int, col pixel.Color)  { c.drew(c.cv.FillRect(x, y, w, h, col)) }
func (c *core) DrawCircle(cx, cy, r int, col pixel.Color) { c.drew(c.cv.Circle(cx, cy, r, col)) }
func (c *core) FillCircle(cx, cy, r int, col pixel.Color) { c.drew(c.cv.FillCircle(cx, cy, r, col)) }

func (c *core) DrawProgressBar(x, y, w, h int, percent uint8, fg, bg, border pixel.Color) {
	c.drew(c.cv.ProgressBar(x, y, w, h, percent, fg, bg, border))
}

func (c *core) DrawChar(x, y int, r rune, st canvas.TextStyle) {
	c.m.TextCalls++
	c.drew(c.cv.Char(x, y, r, st))
}

func (c *core) DrawText(x, y int, s string, st canvas.TextStyle) {
	c.m.TextCalls++
	c.drew(c.cv.Text(x, y, s, st))
}

func (c *core) DrawTextCentered(y int, s string, st canvas.TextStyle) {
	c.m.TextCalls++
	c.drew(c.cv.TextCentered(y, s, st))
}

func (c *core) UpdateAutoDim() error {
	_, err := c.dim.Update()
	return err
}

func (c *core) ResetActivityTimer() { c.touch() }

// EnsureDisplayOn wakes the panel if it sleeps. It does nothing when the
// panel is already on.
func (c *core) EnsureDisplayOn() error { return c.ctl.Wake() }

// Sleep blanks the panel. Drawing continues into memory.
func (c *core) Sleep() error { return c.ctl.Sleep() }

// pending is what Flush sends: the dirty set, or the whole screen when
// tracking is off.
func (c *core) pending() []image.Rectangle {
	if c.track == nil {
		return []image.Rectangle{c.cv.Bounds()}
	}
	return append([]image.Rectangle(nil), c.track.Rects()...)
}

func (c *core) clip(r image.Rectangle) []image.Rectangle {
	r = r.Intersect(c.cv.Bounds())
	if r.Empty() {
		return nil
	}
	return []image.Rectangle{r}
}

// submitted marks rects as on their way to the panel.
func (c *core) submitted(rects []image.Rectangle, fromDirty bool) {
	for _, r := range rects {
		c.m.PixelsSent += uint64(r.Dx() * r.Dy())
	}
	if fromDirty && c.track != nil {
		c.track.Reset()
	}
}

// finished records a frame that started at start. A failed frame leaves
// the whole screen dirty so the next flush repaints it.
func (c *core) finished(start time.Time, rects []image.Rectangle, err error) error {
	d := c.clock.Now().Sub(start)
	c.m.Flushes++
	c.m.FlushTime += d
	c.m.LastFlush = d
	if err != nil {
		c.m.FlushErrors++
		if c.track != nil {
			c.track.All()
		}
		return err
	}
	if d > 0 && len(rects) == 1 && rects[0] == c.cv.Bounds() {
		c.setFPS(float64(time.Second) / float64(d))
	}
	if n := c.cfg.ReportEvery; n > 0 && c.m.Flushes%uint64(n) == 0 {
		for _, line := range c.Metrics().Report(c.name) {
			c.log.WriteLineString(line)
		}
	}
	if c.held != nil {
		err, c.held = c.held, nil
	}
	return err
}

func (c *core) setFPS(fps float64) {
	c.fps = fps
	c.measured = true
}

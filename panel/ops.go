package panel

import (
	"fmt"
	"image"
)

// SetWindow selects the rectangle that the next memory write fills, in
// panel coordinates.
func (c *Controller) SetWindow(r image.Rectangle) error {
	if c.state < StateAddressModeSet {
		return fmt.Errorf("%w: window in state %s", ErrNotReady, c.state)
	}
	return c.setWindow(r)
}

func (c *Controller) setWindow(r image.Rectangle) error {
	if r.Empty() || !r.In(image.Rect(0, 0, c.cfg.Width, c.cfg.Height)) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, r)
	}
	x0, x1 := r.Min.X+c.cfg.XOffset, r.Max.X-1+c.cfg.XOffset
	y0, y1 := r.Min.Y+c.cfg.YOffset, r.Max.Y-1+c.cfg.YOffset
	if err := c.command(CmdCASET, span(x0, x1)); err != nil {
		return err
	}
	if err := c.command(CmdRASET, span(y0, y1)); err != nil {
		return err
	}
	c.window = r
	c.windowed = true
	return nil
}

func (c *Controller) checkWrite(r image.Rectangle, p []byte) error {
	if c.state != StateReady {
		return fmt.Errorf("%w: memory write in state %s", ErrNotReady, c.state)
	}
	if want := r.Dx() * r.Dy() * 2; len(p) != want || want == 0 {
		return fmt.Errorf("%w: %d bytes for %v", ErrSizeMismatch, len(p), r)
	}
	if max := c.bus.MaxTransfer(); max > 0 && len(p) > max {
		return fmt.Errorf("%w: %d > %d bytes", ErrUnchunked, len(p), max)
	}
	return nil
}

// WritePixels sets the window to r and writes p, already encoded in the
// panel byte order. It returns once the bus has accepted every byte.
func (c *Controller) WritePixels(r image.Rectangle, p []byte) error {
	if err := c.checkWrite(r, p); err != nil {
		return err
	}
	if err := c.setWindow(r); err != nil {
		return err
	}
	if err := c.command(CmdRAMWR, nil); err != nil {
		return err
	}
	return c.bus.Data(p)
}

// StartPixels is WritePixels through the block transfer engine. It returns
// as soon as the transfer is queued; done reports completion.
func (c *Controller) StartPixels(r image.Rectangle, p []byte, done func(ok bool)) error {
	if c.async == nil {
		return ErrNotAsync
	}
	if err := c.checkWrite(r, p); err != nil {
		return err
	}
	if err := c.setWindow(r); err != nil {
		return err
	}
	if err := c.command(CmdRAMWR, nil); err != nil {
		return err
	}
	return c.async.StartData(p, done)
}

// Sleep blanks the panel and enters sleep mode. Memory is retained.
func (c *Controller) Sleep() error {
	if c.state != StateReady {
		return fmt.Errorf("%w: sleep in state %s", ErrNotReady, c.state)
	}
	if c.power == PowerAsleep {
		return nil
	}
	if err := c.command(CmdDISPOFF, nil); err != nil {
		return err
	}
	if err := c.command(CmdSLPIN, nil); err != nil {
		return err
	}
	// The controller needs the same settle time before it may leave sleep.
	c.settle(c.cfg.SleepOutSettle)
	c.power = PowerAsleep
	if c.light != nil {
		return c.light.SetLevel(0)
	}
	return nil
}

// Wake replays the minimal sleep-out sequence. It does nothing when the
// panel is already on.
func (c *Controller) Wake() error {
	if c.state != StateReady {
		return fmt.Errorf("%w: wake in state %s", ErrNotReady, c.state)
	}
	if c.power == PowerOn {
		return nil
	}
	if err := c.sleepOut(); err != nil {
		return err
	}
	if err := c.displayOn(); err != nil {
		return err
	}
	c.power = PowerOn
	c.log.WriteLineString("panel: awake")
	return c.SetBrightness(c.brightness)
}

// SetBrightness drives the backlight. Without a backlight only the level
// is recorded.
func (c *Controller) SetBrightness(level uint8) error {
	c.brightness = level
	if c.light == nil || c.power != PowerOn {
		return nil
	}
	if err := c.light.SetLevel(level); err != nil {
		return fmt.Errorf("panel: backlight: %w", err)
	}
	return nil
}

func (c *Controller) Brightness() uint8 { return c.brightness }

// SetAddressMode rewrites MADCTL. Only mirroring and color order may
// change; the row/column exchange is fixed by the configured geometry.
func (c *Controller) SetAddressMode(mode byte) error {
	if c.state != StateReady {
		return fmt.Errorf("%w: address mode in state %s", ErrNotReady, c.state)
	}
	if mode&SwapXY != c.cfg.AddressMode&SwapXY {
		return fmt.Errorf("%w: %#02x", ErrFixedGeometry, mode)
	}
	if err := c.command(CmdMADCTL, []byte{mode}); err != nil {
		return err
	}
	c.mode = mode
	return nil
}

package panel

import (
	"fmt"
	"image"
	"time"

	"lcdpipe/hal"
	"lcdpipe/lcdbus"
	"lcdpipe/pixel"
)

// Options are the collaborators of a Controller. Nil fields get defaults.
type Options struct {
	Clock     hal.Clock
	Backlight hal.Backlight
	Logger    hal.Logger
}

// Status is a snapshot of the controller.
type Status struct {
	State       State
	Power       Power
	Window      image.Rectangle
	WindowValid bool
	AddressMode byte
	ColorMode   byte
	Brightness  uint8
	Order       pixel.ByteOrder
}

// Controller owns the bus to one ST7789 and tracks its protocol state.
// It is not safe for concurrent use.
type Controller struct {
	bus   lcdbus.Bus
	async lcdbus.AsyncBus
	cfg   Config
	clock hal.Clock
	light hal.Backlight
	log   hal.Logger

	state      State
	power      Power
	window     image.Rectangle
	windowed   bool
	readyAt    time.Time
	mode       byte
	brightness uint8
}

func New(bus lcdbus.Bus, cfg Config, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, fmt.Errorf("%w: no bus", ErrInvalidConfig)
	}
	if opts.Clock == nil {
		opts.Clock = hal.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = hal.Discard
	}
	c := &Controller{
		bus:   bus,
		cfg:   cfg,
		clock: opts.Clock,
		light: opts.Backlight,
		log:   opts.Logger,
		mode:  cfg.AddressMode,
	}
	if a, ok := bus.(lcdbus.AsyncBus); ok {
		c.async = a
	}
	return c, nil
}

func (c *Controller) Width() int                 { return c.cfg.Width }
func (c *Controller) Height() int                { return c.cfg.Height }
func (c *Controller) State() State               { return c.state }
func (c *Controller) ByteOrder() pixel.ByteOrder { return c.cfg.Order }
func (c *Controller) Async() bool                { return c.async != nil }
func (c *Controller) MaxTransfer() int           { return c.bus.MaxTransfer() }

func (c *Controller) Status() Status {
	return Status{
		State:       c.state,
		Power:       c.power,
		Window:      c.window,
		WindowValid: c.windowed,
		AddressMode: c.mode,
		ColorMode:   ColorMode16,
		Brightness:  c.brightness,
		Order:       c.cfg.Order,
	}
}

// Init runs the full bring-up from hardware reset to Ready. Calling it
// again restarts from reset.
func (c *Controller) Init() error {
	c.state = StateReset
	c.power = PowerOff
	c.windowed = false

	steps := []struct {
		next State
		run  func() error
	}{
		{StateSoftwareReset, c.softwareReset},
		{StateSleepOut, c.sleepOut},
		{StateColorModeSet, c.colorMode},
		{StateAddressModeSet, c.addressMode},
		{StateWindowSet, c.initialWindow},
		{StateDisplayOn, c.displayOn},
		{StateReady, c.ready},
	}

	if err := c.hardwareReset(); err != nil {
		return fmt.Errorf("panel: %s: %w", StateReset, err)
	}
	for _, s := range steps {
		if err := c.advance(s.next, s.run); err != nil {
			return err
		}
	}
	c.log.WriteLineString(fmt.Sprintf("panel: ready %dx%d mode=%#02x order=%s", c.cfg.Width, c.cfg.Height, c.mode, c.cfg.Order))
	return nil
}

func (c *Controller) advance(next State, run func() error) error {
	if next != c.state+1 {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, c.state, next)
	}
	if err := run(); err != nil {
		return fmt.Errorf("panel: %s: %w", next, err)
	}
	c.state = next
	return nil
}

func (c *Controller) hardwareReset() error {
	if !c.bus.HasReset() {
		return nil
	}
	for _, level := range []bool{true, false} {
		if err := c.bus.SetReset(level); err != nil {
			return err
		}
		c.clock.Sleep(c.cfg.ResetPulse)
	}
	if err := c.bus.SetReset(true); err != nil {
		return err
	}
	c.settle(c.cfg.ResetSettle)
	return nil
}

func (c *Controller) softwareReset() error {
	if err := c.command(CmdSWRESET, nil); err != nil {
		return err
	}
	c.settle(c.cfg.SoftResetSettle)
	return nil
}

func (c *Controller) sleepOut() error {
	if err := c.command(CmdSLPOUT, nil); err != nil {
		return err
	}
	c.settle(c.cfg.SleepOutSettle)
	return nil
}

func (c *Controller) colorMode() error {
	return c.command(CmdCOLMOD, []byte{ColorMode16})
}

func (c *Controller) addressMode() error {
	if err := c.command(CmdMADCTL, []byte{c.mode}); err != nil {
		return err
	}
	inv := byte(CmdINVOFF)
	if c.cfg.Invert {
		inv = CmdINVON
	}
	if err := c.command(inv, nil); err != nil {
		return err
	}
	return c.command(CmdNORON, nil)
}

func (c *Controller) initialWindow() error {
	if c.cfg.ClearMemory {
		if err := c.clearMemory(); err != nil {
			return err
		}
	}
	return c.setWindow(image.Rect(0, 0, c.cfg.Width, c.cfg.Height))
}

func (c *Controller) displayOn() error {
	if err := c.command(CmdDISPON, nil); err != nil {
		return err
	}
	c.settle(c.cfg.DisplayOnSettle)
	return nil
}

func (c *Controller) ready() error {
	c.waitSettled()
	c.power = PowerOn
	return c.SetBrightness(255)
}

// clearMemory writes black to every controller memory cell, visible or not.
func (c *Controller) clearMemory() error {
	cols, rows := memorySize(c.mode)
	if err := c.command(CmdCASET, span(0, cols-1)); err != nil {
		return err
	}
	if err := c.command(CmdRASET, span(0, rows-1)); err != nil {
		return err
	}
	if err := c.command(CmdRAMWR, nil); err != nil {
		return err
	}
	total := cols * rows * 2
	n := total
	if max := c.bus.MaxTransfer(); max > 0 && max < n {
		n = max &^ 1
	}
	zero := make([]byte, n)
	for off := 0; off < total; off += n {
		if off+n > total {
			zero = zero[:total-off]
		}
		if err := c.bus.Data(zero); err != nil {
			return err
		}
	}
	return nil
}

// settle makes the next command wait at least d.
func (c *Controller) settle(d time.Duration) {
	c.readyAt = c.clock.Now().Add(d)
}

func (c *Controller) waitSettled() {
	if d := c.readyAt.Sub(c.clock.Now()); d > 0 {
		c.clock.Sleep(d)
	}
}

// command sends cmd and params. Every command except the addressing ones
// makes the controller forget the current window.
func (c *Controller) command(cmd byte, params []byte) error {
	c.waitSettled()
	switch cmd {
	case CmdCASET, CmdRASET, CmdRAMWR, CmdNOP:
	default:
		c.windowed = false
	}
	return c.bus.Command(cmd, params)
}

func span(start, end int) []byte {
	return []byte{byte(start >> 8), byte(start), byte(end >> 8), byte(end)}
}

package backend

import (
	"fmt"
	"image"

	"lcdpipe/canvas"
	"lcdpipe/dirty"
	"lcdpipe/framebuf"
	"lcdpipe/hal"
	"lcdpipe/lcdbus"
	"lcdpipe/panel"
	"lcdpipe/power"
	"lcdpipe/transfer"
)

// New brings the panel up on hw and returns the variant cfg asks for.
// It starts no goroutines, so a failed New leaves nothing running.
func New(cfg Config, hw hal.HAL) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hw == nil {
		return nil, fmt.Errorf("%w: no board", ErrInvalidConfig)
	}
	log := hw.Logger()
	if log == nil {
		log = hal.Discard
	}
	clock := hw.Clock()
	if clock == nil {
		clock = hal.SystemClock{}
	}

	bus, err := openBus(cfg, hw)
	if err != nil {
		return nil, err
	}
	ctl, err := panel.New(bus, cfg.Panel, panel.Options{Clock: clock, Backlight: hw.Backlight(), Logger: log})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := ctl.Init(); err != nil {
		return nil, fmt.Errorf("backend: panel init: %w", err)
	}

	w, err := transfer.NewWriter(ctl, transfer.Config{
		MaxChunk:   cfg.ChunkBytes(),
		Region:     cfg.Region,
		QueueDepth: cfg.QueueDepth,
		Timeout:    cfg.Timeout,
	}, transfer.Options{Clock: clock, Watchdog: hw.Watchdog()})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dim, err := power.NewDimmer(cfg.Dim, power.NewActivity(clock), ctl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &core{
		cfg:   cfg,
		ctl:   ctl,
		w:     w,
		clock: clock,
		log:   log,
		dim:   dim,
	}
	if cfg.DirtyTracking {
		c.track = dirty.New(image.Rect(0, 0, ctl.Width(), ctl.Height()))
	}

	var b Backend
	switch cfg.Kind {
	case KindBitBang:
		c.name = "bitbang"
		c.cv = canvas.New(ctl.Width(), ctl.Height())
		b = &BitBang{core: c}
	default:
		a := &Accelerated{core: c}
		c.name = "accelerated/" + cfg.Preset.String()
		if cfg.DoubleBuffer {
			a.db = framebuf.New(ctl.Width(), ctl.Height())
			c.cv = a.db.Active()
		} else {
			c.cv = canvas.New(ctl.Width(), ctl.Height())
		}
		b = a
	}
	log.WriteLineString(fmt.Sprintf("backend: %s ready, %s clock, chunk %d B x%d, %s memory, double buffer %v",
		c.name, cfg.BusClock, w.ChunkLimit(), cfg.QueueDepth, cfg.Region, cfg.DoubleBuffer && cfg.Kind == KindAccelerated))
	return b, nil
}

func openBus(cfg Config, hw hal.HAL) (lcdbus.Bus, error) {
	if cfg.Kind == KindBitBang {
		pins := hw.Pins()
		if pins == nil {
			return nil, fmt.Errorf("%w: no bus pins", ErrUnsupported)
		}
		bus, err := lcdbus.NewBitBang(pins, hw.Watchdog(), cfg.ChunkBytes())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return bus, nil
	}

	eng := hw.Transfer()
	if eng == nil {
		return nil, fmt.Errorf("%w: no block transfer engine", ErrUnsupported)
	}
	if ct, ok := eng.(hal.ClockedTransfer); ok {
		if err := ct.SetClock(cfg.BusClock); err != nil {
			return nil, fmt.Errorf("%w: bus clock %s: %w", ErrUnsupported, cfg.BusClock, err)
		}
	}
	bus, err := lcdbus.NewI8080(eng, hw.Reset(), hw.Clock())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return bus, nil
}

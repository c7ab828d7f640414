// Package power tracks user activity and dims the backlight when idle.
package power

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"lcdpipe/hal"
)

var ErrInvalidConfig = errors.New("power: invalid dim configuration")

// Activity is the last time something was drawn or pressed. Touch may be
// called from any goroutine.
type Activity struct {
	clock hal.Clock
	last  atomic.Int64
}

func NewActivity(clock hal.Clock) *Activity {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	a := &Activity{clock: clock}
	a.Touch()
	return a
}

func (a *Activity) Touch() { a.last.Store(a.clock.Now().UnixNano()) }

func (a *Activity) Last() time.Time { return time.Unix(0, a.last.Load()) }

func (a *Activity) Idle() time.Duration { return a.clock.Now().Sub(a.Last()) }

// Light is anything with a settable brightness.
type Light interface {
	SetBrightness(level uint8) error
}

type DimConfig struct {
	// Timeout is the idle time before dimming starts.
	Timeout time.Duration
	Full    uint8
	Dim     uint8
	// Step is how far each Update lowers brightness once idle.
	Step uint8
}

func DefaultDimConfig() DimConfig {
	return DimConfig{Timeout: 300 * time.Second, Full: 255, Dim: 100, Step: 16}
}

func (c DimConfig) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout %v", ErrInvalidConfig, c.Timeout)
	case c.Dim > c.Full:
		return fmt.Errorf("%w: dim %d above full %d", ErrInvalidConfig, c.Dim, c.Full)
	case c.Step == 0:
		return fmt.Errorf("%w: zero step", ErrInvalidConfig)
	}
	return nil
}

// Dimmer steps the backlight down after idle time and restores it on
// activity. Update and Touch belong to the rendering goroutine.
type Dimmer struct {
	cfg      DimConfig
	act      *Activity
	light    Light
	level    uint8
	disabled bool
}

func NewDimmer(cfg DimConfig, act *Activity, light Light) (*Dimmer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if act == nil || light == nil {
		return nil, fmt.Errorf("%w: missing activity or light", ErrInvalidConfig)
	}
	return &Dimmer{cfg: cfg, act: act, light: light, level: cfg.Full}, nil
}

func (d *Dimmer) Level() uint8        { return d.level }
func (d *Dimmer) Dimmed() bool        { return d.level < d.cfg.Full }
func (d *Dimmer) Config() DimConfig   { return d.cfg }
func (d *Dimmer) Activity() *Activity { return d.act }
func (d *Dimmer) Idle() time.Duration { return d.act.Idle() }
func (d *Dimmer) Enabled() bool       { return !d.disabled }

// SetEnabled turns auto-dim on or off. Turning it off restores full
// brightness.
func (d *Dimmer) SetEnabled(on bool) error {
	d.disabled = !on
	if !on {
		return d.set(d.cfg.Full)
	}
	return nil
}

// Update lowers brightness by one step when idle past the timeout. It
// never goes below the dim level and returns whether the level changed.
func (d *Dimmer) Update() (bool, error) {
	if d.disabled || d.level <= d.cfg.Dim || d.act.Idle() < d.cfg.Timeout {
		return false, nil
	}
	next := d.cfg.Dim
	if d.level-d.cfg.Dim > d.cfg.Step {
		next = d.level - d.cfg.Step
	}
	if err := d.set(next); err != nil {
		return false, err
	}
	return true, nil
}

// Touch records activity and restores full brightness at once.
func (d *Dimmer) Touch() error {
	d.act.Touch()
	if d.level == d.cfg.Full {
		return nil
	}
	return d.set(d.cfg.Full)
}

func (d *Dimmer) set(level uint8) error {
	if err := d.light.SetBrightness(level); err != nil {
		return fmt.Errorf("power: set brightness %d: %w", level, err)
	}
	d.level = level
	return nil
}

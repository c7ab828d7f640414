//go:build linux && !tinygo

package hal

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// backlightPWM is the PWM carrier used for dimming.
const backlightPWM = 20 * physic.KiloHertz

// OpenPeriph claims the named host GPIO lines for bit-banging the panel.
// The returned board has no block transfer engine.
func OpenPeriph(cfg PeriphConfig, log Logger) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: host init: %w", err)
	}

	var pins BusPins
	var err error
	for i, name := range cfg.Data {
		if pins.Data[i], err = openOut(name); err != nil {
			return nil, err
		}
	}
	if pins.WR, err = openOut(cfg.WR); err != nil {
		return nil, err
	}
	if pins.DC, err = openOut(cfg.DC); err != nil {
		return nil, err
	}
	if pins.CS, err = openOut(cfg.CS); err != nil {
		return nil, err
	}
	if cfg.RST != "" {
		if pins.RST, err = openOut(cfg.RST); err != nil {
			return nil, err
		}
	}

	b := &Board{
		Log:     log,
		Clk:     SystemClock{},
		BusPins: &pins,
		// Frame buffers live in ordinary process memory on a host.
		Mem: Memory{Fast: 64 << 20},
	}
	if cfg.Backlight != "" {
		p := gpioreg.ByName(cfg.Backlight)
		if p == nil {
			return nil, fmt.Errorf("periph: no gpio named %q", cfg.Backlight)
		}
		b.Light = &periphBacklight{p: p}
	}
	return b, nil
}

func openOut(name string) (Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("periph: no gpio named %q", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("periph: %s: %w", name, err)
	}
	return periphPin{p: p}, nil
}

type periphPin struct {
	p gpio.PinOut
}

func (p periphPin) Set(high bool) error { return p.p.Out(gpio.Level(high)) }

type periphBacklight struct {
	p gpio.PinOut
}

func (b *periphBacklight) SetLevel(level uint8) error {
	switch level {
	case 0:
		return b.p.Out(gpio.Low)
	case 255:
		return b.p.Out(gpio.High)
	}
	duty := gpio.Duty(int64(gpio.DutyMax) * int64(level) / 255)
	return b.p.PWM(duty, backlightPWM)
}

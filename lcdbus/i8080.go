package lcdbus

import (
	"fmt"
	"sync/atomic"
	"time"

	"lcdpipe/hal"
)

const (
	// syncWait bounds how long Data waits for the engine.
	syncWait = time.Second
	syncPoll = 20 * time.Microsecond
)

// I8080 runs the bus through a hardware block transfer engine.
type I8080 struct {
	eng   hal.BlockTransfer
	rst   hal.Pin
	clock hal.Clock
}

// NewI8080 wraps eng. rst may be nil when the reset line is not wired.
// Data waits for the engine on clock; nil means the system clock.
func NewI8080(eng hal.BlockTransfer, rst hal.Pin, clock hal.Clock) (*I8080, error) {
	if eng == nil {
		return nil, fmt.Errorf("block transfer engine: %w", ErrMissingPin)
	}
	if clock == nil {
		clock = hal.SystemClock{}
	}
	return &I8080{eng: eng, rst: rst, clock: clock}, nil
}

func (b *I8080) HasReset() bool { return b.rst != nil }

func (b *I8080) SetReset(high bool) error {
	if b.rst == nil {
		return nil
	}
	return b.rst.Set(high)
}

func (b *I8080) MaxTransfer() int { return b.eng.MaxTransfer() }

func (b *I8080) Command(cmd byte, params []byte) error {
	if err := b.eng.Command(cmd, params); err != nil {
		return fmt.Errorf("lcdbus: command %#02x: %w", cmd, err)
	}
	return nil
}

func (b *I8080) StartData(p []byte, done func(ok bool)) error {
	if err := b.eng.Start(p, done); err != nil {
		return fmt.Errorf("lcdbus: start %d bytes: %w", len(p), err)
	}
	return nil
}

// Data starts p and waits for it to reach the panel.
func (b *I8080) Data(p []byte) error {
	const (
		pending = iota
		ok
		failed
	)
	var state atomic.Int32
	err := b.StartData(p, func(success bool) {
		if success {
			state.Store(ok)
			return
		}
		state.Store(failed)
	})
	if err != nil {
		return err
	}
	start := b.clock.Now()
	for {
		switch state.Load() {
		case ok:
			return nil
		case failed:
			return ErrFailed
		}
		if b.clock.Now().Sub(start) > syncWait {
			return ErrTimeout
		}
		b.clock.Sleep(syncPoll)
	}
}

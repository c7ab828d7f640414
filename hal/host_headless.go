//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Hz is the frame rate; 0 means 60.
	Hz int
	// Ticks stops the runner after that many frames; 0 runs until ctx ends.
	Ticks uint64
	// Log receives a pacing summary when the runner stops. Nil discards it.
	Log Logger
}

// RunHeadless calls step once per frame period until ctx ends, step fails
// or cfg.Ticks frames have run. A step that overruns its period starts the
// next one immediately; missed periods are not made up.
func RunHeadless(ctx context.Context, step func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	period := time.Second / time.Duration(cfg.Hz)
	if period <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	if cfg.Log == nil {
		cfg.Log = Discard
	}

	var frames, late uint64
	defer func() {
		cfg.Log.WriteLineString(fmt.Sprintf("headless: %d frames, %d late at %d Hz", frames, late, cfg.Hz))
	}()

	timer := time.NewTimer(period)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		start := time.Now()
		if step != nil {
			if err := step(); err != nil {
				return err
			}
		}
		frames++
		if cfg.Ticks > 0 && frames >= cfg.Ticks {
			return nil
		}
		wait := period - time.Since(start)
		if wait <= 0 {
			late++
			wait = 0
		}
		timer.Reset(wait)
	}
}

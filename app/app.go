// Package app is a small status dashboard that keeps a backend busy with
// a realistic mix of partial updates.
package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"lcdpipe/backend"
	"lcdpipe/hal"
)

// maxFlushErrors is how many consecutive failed frames Step tolerates.
const maxFlushErrors = 10

type Config struct {
	// Bench runs the benchmark battery before the first frame.
	Bench bool
	// Title is shown in the header bar.
	Title string
	// Idle is how long after the last Poke the dashboard keeps
	// animating. Drawing counts as activity, so a frozen dashboard is what
	// lets the backlight dim. Zero means 30s.
	Idle time.Duration
}

// App renders one dashboard frame per Step. Step and Run belong to one
// goroutine; Poke may be called from any.
type App struct {
	b     backend.Backend
	log   hal.Logger
	clock hal.Clock
	cfg   Config

	start   time.Time
	input   time.Time
	frame   uint64
	failed  int
	poked   atomic.Bool
	faulted bool
	dash    dashboard
}

func New(b backend.Backend, h hal.HAL, cfg Config) (*App, error) {
	if cfg.Title == "" {
		cfg.Title = "lcdpipe"
	}
	if cfg.Idle <= 0 {
		cfg.Idle = 30 * time.Second
	}
	a := &App{b: b, log: h.Logger(), clock: h.Clock(), cfg: cfg}
	if a.log == nil {
		a.log = hal.Discard
	}
	if a.clock == nil {
		a.clock = hal.SystemClock{}
	}
	if err := bootScreen(b, cfg.Title); err != nil {
		return nil, err
	}
	if cfg.Bench {
		res, err := backend.RunBenchmark(context.Background(), b, a.clock)
		if err != nil {
			return nil, err
		}
		for _, line := range res.Report() {
			a.log.WriteLineString(line)
		}
	}
	a.start = a.clock.Now()
	a.input = a.start
	a.dash.layout(b, cfg.Title)
	return a, nil
}

// Poke records user activity. It is safe from any goroutine; the next
// Step wakes the panel and restores brightness.
func (a *App) Poke() { a.poked.Store(true) }

// Frames is the number of frames rendered.
func (a *App) Frames() uint64 { return a.frame }

// Animating reports whether Step currently draws frames.
func (a *App) Animating() bool { return a.clock.Now().Sub(a.input) < a.cfg.Idle }

// Step renders and flushes one frame and runs the auto-dim check. A
// dropped frame is logged and skipped; only a run of them is an error.
// A panic while drawing is turned into a fault screen.
func (a *App) Step() (err error) {
	if a.faulted {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			a.faulted = true
			a.log.WriteLineString(fmt.Sprintf("app: panic: %v", r))
			showFault(a.b, "panic", fmt.Sprint(r), debug.Stack())
			err = nil
		}
	}()

	if a.poked.Swap(false) {
		if err := a.b.EnsureDisplayOn(); err != nil {
			return err
		}
		a.b.ResetActivityTimer()
		a.input = a.clock.Now()
	}
	if !a.Animating() {
		return a.b.UpdateAutoDim()
	}

	a.frame++
	a.dash.draw(a.b, a.frame, a.clock.Now().Sub(a.start))
	if err := a.b.Flush(context.Background()); err != nil {
		a.failed++
		a.log.WriteLineString(fmt.Sprintf("app: frame %d dropped: %v", a.frame, err))
		if a.failed >= maxFlushErrors {
			return fmt.Errorf("app: %d frames dropped in a row: %w", a.failed, err)
		}
	} else {
		a.failed = 0
	}
	return a.b.UpdateAutoDim()
}

// Run steps at hz until ctx ends or Step fails.
func (a *App) Run(ctx context.Context, hz int) error {
	if hz <= 0 {
		hz = 30
	}
	period := time.Second / time.Duration(hz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := a.clock.Now().Add(period)
		if err := a.Step(); err != nil {
			showFault(a.b, "error", err.Error(), nil)
			return err
		}
		if d := next.Sub(a.clock.Now()); d > 0 {
			a.clock.Sleep(d)
		}
	}
}

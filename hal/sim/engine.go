package sim

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/physic"
)

var (
	ErrTooLarge = errors.New("sim: transfer larger than engine limit")
	ErrClosed   = errors.New("sim: engine closed")
)

// EngineConfig tunes the simulated block transfer engine.
type EngineConfig struct {
	// MaxTransfer is the largest single Start; 0 means 32 KiB.
	MaxTransfer int
	// Async completes transfers on a worker goroutine. Otherwise Start
	// completes before returning.
	Async bool
	// Throttle, with Async, delays each transfer by its duration on an
	// 8-bit bus at the clock last given to SetClock.
	Throttle bool
}

type job struct {
	buf  []byte
	done func(ok bool)
}

// Engine implements hal.BlockTransfer on top of a Panel.
type Engine struct {
	p   *Panel
	cfg EngineConfig

	mu     sync.Mutex
	jobs   chan job
	closed bool

	pending atomic.Int32
	failN   atomic.Int32
	stall   atomic.Bool
	starts  atomic.Int64
	bytes   atomic.Int64
	clock   atomic.Int64
}

func NewEngine(p *Panel, cfg EngineConfig) *Engine {
	if cfg.MaxTransfer <= 0 {
		cfg.MaxTransfer = 32 << 10
	}
	return &Engine{p: p, cfg: cfg}
}

func (e *Engine) Command(cmd byte, params []byte) error {
	e.drain()
	e.p.WriteCommand(cmd)
	if len(params) > 0 {
		e.p.WriteData(params)
	}
	return nil
}

func (e *Engine) Start(buf []byte, done func(ok bool)) error {
	if len(buf) > e.cfg.MaxTransfer {
		return ErrTooLarge
	}
	e.starts.Add(1)
	if e.stall.Load() {
		return nil
	}
	fail := e.failN.Load() > 0 && e.failN.Add(-1) >= 0

	if !e.cfg.Async {
		if !fail {
			e.p.WriteData(buf)
			e.bytes.Add(int64(len(buf)))
		}
		done(!fail)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.jobs == nil {
		e.jobs = make(chan job, 64)
		go e.run()
	}
	e.pending.Add(1)
	if fail {
		e.jobs <- job{done: done}
		return nil
	}
	e.jobs <- job{buf: buf, done: done}
	return nil
}

func (e *Engine) run() {
	for j := range e.jobs {
		if j.buf == nil {
			j.done(false)
			e.pending.Add(-1)
			continue
		}
		if f := physic.Frequency(e.clock.Load()); e.cfg.Throttle && f > 0 {
			time.Sleep(f.Period() * time.Duration(len(j.buf)))
		}
		e.p.WriteData(j.buf)
		e.bytes.Add(int64(len(j.buf)))
		j.done(true)
		e.pending.Add(-1)
	}
}

func (e *Engine) drain() {
	for e.pending.Load() > 0 {
		runtime.Gosched()
	}
}

func (e *Engine) MaxTransfer() int { return e.cfg.MaxTransfer }

// SetClock records the bus write clock.
func (e *Engine) SetClock(f physic.Frequency) error {
	e.clock.Store(int64(f))
	return nil
}

func (e *Engine) Clock() physic.Frequency { return physic.Frequency(e.clock.Load()) }

// FailNext makes the next n transfers complete with ok=false without
// touching the panel.
func (e *Engine) FailNext(n int) { e.failN.Store(int32(n)) }

// Stall makes every following transfer never complete.
func (e *Engine) Stall(on bool) { e.stall.Store(on) }

// Starts counts transfers handed to the engine.
func (e *Engine) Starts() int64 { return e.starts.Load() }

// Bytes counts bytes delivered to the panel.
func (e *Engine) Bytes() int64 { return e.bytes.Load() }

// Close stops the worker goroutine once queued transfers finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.jobs != nil {
		close(e.jobs)
	}
	return nil
}

package transfer

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"lcdpipe/canvas"
	"lcdpipe/hal"
	"lcdpipe/pixel"
)

const (
	pollInterval = 50 * time.Microsecond
	// feedChunks is how many chunks go out between watchdog feeds.
	feedChunks = 4
)

// Target accepts encoded memory writes for a rectangle. The panel
// controller implements it.
type Target interface {
	WritePixels(r image.Rectangle, p []byte) error
	StartPixels(r image.Rectangle, p []byte, done func(ok bool)) error
	Async() bool
	ByteOrder() pixel.ByteOrder
	MaxTransfer() int
}

// Config sizes a Writer.
type Config struct {
	// MaxChunk is the largest memory write in bytes. The target's own
	// limit wins when smaller.
	MaxChunk int
	Region   Region
	// QueueDepth is how many chunks may be in flight, each with its own
	// staging buffer.
	QueueDepth int
	// Timeout bounds each wait for completions.
	Timeout time.Duration
}

// Options are the collaborators of a Writer. Nil fields get defaults.
type Options struct {
	Clock    hal.Clock
	Watchdog hal.Watchdog
}

// Stats are cumulative Writer counters.
type Stats struct {
	Chunks   uint64
	Bytes    uint64
	Failures uint64
	Timeouts uint64
	// Reallocations counts staging sets allocated after a timeout because
	// no drained spare set was available.
	Reallocations uint64
}

// Writer is the only path by which pixel data reaches the panel in bulk.
// Submit and Wait must be called from one goroutine; completions may
// arrive on any goroutine and only touch atomics.
type Writer struct {
	t     Target
	cfg   Config
	max   int
	clock hal.Clock
	wd    hal.Watchdog

	slots [][]byte
	cur   *batch

	// After a timeout the abandoned slots wait in spare until every chunk
	// of the retired batch has completed; the next timeout reuses them.
	retired *batch
	spare   [][]byte

	failedBefore uint64
	stats        Stats
}

// batch counts the chunks submitted since the last timeout. A timeout
// replaces it, so late completions land in the retired batch and never
// in the current one.
type batch struct {
	submitted int64
	seen      uint64
	completed atomic.Int64
	failed    atomic.Uint64
}

func (b *batch) complete(ok bool) {
	if !ok {
		b.failed.Add(1)
	}
	b.completed.Add(1)
}

func (b *batch) drained() bool { return b.completed.Load() >= b.submitted }

func NewWriter(t Target, cfg Config, opts Options) (*Writer, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: no target", ErrInvalidConfig)
	}
	if cfg.QueueDepth < 1 {
		return nil, fmt.Errorf("%w: queue depth %d", ErrInvalidConfig, cfg.QueueDepth)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout %v", ErrInvalidConfig, cfg.Timeout)
	}
	max := Limit(cfg.MaxChunk, t.MaxTransfer(), cfg.Region)
	if max < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrChunkTooSmall, cfg.MaxChunk)
	}
	if !t.Async() {
		cfg.QueueDepth = 1
	}
	if opts.Clock == nil {
		opts.Clock = hal.SystemClock{}
	}
	if opts.Watchdog == nil {
		opts.Watchdog = hal.NopWatchdog{}
	}

	w := &Writer{
		t:     t,
		cfg:   cfg,
		max:   max,
		clock: opts.Clock,
		wd:    opts.Watchdog,
		cur:   &batch{},
	}
	w.slots = w.allocSlots()
	return w, nil
}

// ChunkLimit is the effective per-chunk byte limit.
func (w *Writer) ChunkLimit() int { return w.max }

// StagingBytes is the memory held by staging buffers.
func (w *Writer) StagingBytes() int { return len(w.slots) * w.max }

func (w *Writer) Stats() Stats {
	s := w.stats
	s.Failures = w.failedBefore + w.cur.failed.Load()
	return s
}

// Busy reports whether submitted chunks are still in flight.
func (w *Writer) Busy() bool { return !w.cur.drained() }

// Write submits r of src and waits for every chunk to complete.
func (w *Writer) Write(ctx context.Context, src canvas.Reader, r image.Rectangle) error {
	if err := w.Submit(ctx, src, r); err != nil {
		return err
	}
	return w.Wait(ctx)
}

// Submit encodes r of src chunk by chunk into staging buffers and hands
// them to the target. It blocks only while every staging buffer is in
// flight. src is not read after Submit returns.
func (w *Writer) Submit(ctx context.Context, src canvas.Reader, r image.Rectangle) error {
	r = r.Intersect(image.Rect(0, 0, src.Width(), src.Height()))
	chunks, err := Plan(r, w.max, w.cfg.Region.Alignment())
	if err != nil {
		return err
	}
	order := w.t.ByteOrder()
	for i, ch := range chunks {
		if err := w.waitFor(ctx, w.cur.submitted-int64(len(w.slots))+1); err != nil {
			return err
		}
		b := w.cur
		slot := w.slots[b.submitted%int64(len(w.slots))]
		buf := slot[:encode(slot, src, ch.Rect, order)]

		b.submitted++
		w.stats.Chunks++
		w.stats.Bytes += uint64(len(buf))
		if w.t.Async() {
			if err := w.t.StartPixels(ch.Rect, buf, b.complete); err != nil {
				b.submitted--
				return fmt.Errorf("%w: chunk %d of %d: %w", ErrTransferFailed, i+1, len(chunks), err)
			}
		} else {
			err := w.t.WritePixels(ch.Rect, buf)
			b.complete(err == nil)
			if err != nil {
				b.seen = b.failed.Load()
				return fmt.Errorf("%w: chunk %d of %d: %w", ErrTransferFailed, i+1, len(chunks), err)
			}
		}
		if (i+1)%feedChunks == 0 {
			w.wd.Feed()
		}
	}
	return nil
}

// Wait blocks until every submitted chunk has completed. A failed chunk
// since the previous Wait is reported as ErrTransferFailed.
func (w *Writer) Wait(ctx context.Context) error {
	b := w.cur
	if err := w.waitFor(ctx, b.submitted); err != nil {
		return err
	}
	if f := b.failed.Load(); f != b.seen {
		n := f - b.seen
		b.seen = f
		return fmt.Errorf("%w: %d chunk(s) reported failure", ErrTransferFailed, n)
	}
	return nil
}

func (w *Writer) waitFor(ctx context.Context, target int64) error {
	start := w.clock.Now()
	for w.cur.completed.Load() < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.clock.Now().Sub(start) > w.cfg.Timeout {
			w.abandon()
			return ErrTransferTimeout
		}
		w.clock.Sleep(pollInterval)
	}
	return nil
}

// abandon gives up on chunks still in flight. The engine may still read
// their staging buffers, so the slots are set aside and replaced by the
// spare set when the batch before them has drained, or by fresh ones.
func (w *Writer) abandon() {
	w.stats.Timeouts++
	w.failedBefore += w.cur.failed.Load()
	next := w.spare
	if w.retired == nil || !w.retired.drained() {
		next = w.allocSlots()
		w.stats.Reallocations++
	}
	w.retired, w.spare = w.cur, w.slots
	w.cur, w.slots = &batch{}, next
}

func (w *Writer) allocSlots() [][]byte {
	slots := make([][]byte, w.cfg.QueueDepth)
	for i := range slots {
		slots[i] = alignedBytes(w.max, w.cfg.Region.Alignment())
	}
	return slots
}

func encode(dst []byte, src canvas.Reader, r image.Rectangle, order pixel.ByteOrder) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		n += order.Encode(dst[n:], src.Row(y, r.Min.X, r.Max.X))
	}
	return n
}

package backend

import (
	"context"
	"errors"
	"image"
	"time"

	"lcdpipe/canvas"
	"lcdpipe/framebuf"
)

// Accelerated draws into the active half of a double buffer and streams
// the presented half through the block transfer engine. Without a double
// buffer it draws into one canvas and every flush blocks.
type Accelerated struct {
	*core
	db *framebuf.DoubleBuffer

	lease    *framebuf.Lease
	started  time.Time
	inFlight []image.Rectangle
}

// DoubleBuffered reports whether frames are presented from a second half.
func (a *Accelerated) DoubleBuffered() bool { return a.db != nil }

func (a *Accelerated) Flush(ctx context.Context) error {
	return a.present(ctx, nil, true)
}

func (a *Accelerated) FlushRegion(ctx context.Context, r image.Rectangle) error {
	return a.present(ctx, a.clip(r), false)
}

// Poll collects a frame started under the Poll policy. It reports true
// once no frame is in flight.
func (a *Accelerated) Poll(ctx context.Context) (bool, error) {
	if a.lease == nil {
		return true, nil
	}
	if a.w.Busy() {
		return false, nil
	}
	return true, a.collect(ctx)
}

// present sends rects, or the dirty set when fromDirty is set. A failure
// of the frame still in flight is returned alongside the outcome of this
// one; it never stops this frame from being sent.
func (a *Accelerated) present(ctx context.Context, rects []image.Rectangle, fromDirty bool) error {
	if a.closed {
		return ErrClosed
	}
	prev := a.collect(ctx)
	if fromDirty {
		rects = a.pending()
	}
	if len(rects) == 0 {
		return prev
	}
	return errors.Join(prev, a.send(ctx, rects, fromDirty))
}

func (a *Accelerated) send(ctx context.Context, rects []image.Rectangle, fromDirty bool) error {
	start := a.clock.Now()
	if a.db == nil {
		a.submitted(rects, fromDirty)
		err := a.write(ctx, a.cv, rects)
		if err == nil {
			err = a.w.Wait(ctx)
		}
		return a.finished(start, rects, err)
	}

	if err := a.db.Swap(); err != nil {
		return err
	}
	a.db.Sync()
	a.cv = a.db.Active()
	lease, err := a.db.Lend()
	if err != nil {
		return err
	}
	a.submitted(rects, fromDirty)
	if err := a.write(ctx, lease.Buffer(), rects); err != nil {
		_ = a.w.Wait(ctx)
		lease.Release()
		return a.finished(start, rects, err)
	}
	a.lease, a.started, a.inFlight = lease, start, rects
	if a.cfg.Policy == Poll {
		return nil
	}
	return a.collect(ctx)
}

func (a *Accelerated) write(ctx context.Context, src canvas.Reader, rects []image.Rectangle) error {
	for _, r := range rects {
		if err := a.w.Submit(ctx, src, r); err != nil {
			return err
		}
	}
	return nil
}

// collect waits for the frame in flight and returns the half it read.
func (a *Accelerated) collect(ctx context.Context) error {
	if a.lease == nil {
		return nil
	}
	err := a.w.Wait(ctx)
	a.lease.Release()
	a.lease = nil
	return a.finished(a.started, a.inFlight, err)
}

func (a *Accelerated) Close() error {
	if a.closed {
		return nil
	}
	err := a.collect(context.Background())
	a.closed = true
	return err
}

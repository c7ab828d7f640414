package backend

import (
	"context"
	"image"
)

// BitBang draws into one canvas and clocks flushed areas out over GPIO.
type BitBang struct {
	*core
}

func (b *BitBang) Flush(ctx context.Context) error {
	return b.send(ctx, b.pending(), true)
}

func (b *BitBang) FlushRegion(ctx context.Context, r image.Rectangle) error {
	return b.send(ctx, b.clip(r), false)
}

func (b *BitBang) send(ctx context.Context, rects []image.Rectangle, fromDirty bool) error {
	if b.closed {
		return ErrClosed
	}
	if len(rects) == 0 {
		return nil
	}
	start := b.clock.Now()
	b.submitted(rects, fromDirty)
	var err error
	for _, r := range rects {
		if err = b.w.Write(ctx, b.cv, r); err != nil {
			break
		}
	}
	return b.finished(start, rects, err)
}

func (b *BitBang) Close() error {
	b.closed = true
	return nil
}

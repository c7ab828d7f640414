package transfer

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"lcdpipe/canvas"
	"lcdpipe/hal"
	"lcdpipe/pixel"
)

// heldTarget keeps every completion callback until the test releases it.
type heldTarget struct {
	done []func(bool)
}

func (h *heldTarget) WritePixels(image.Rectangle, []byte) error { return nil }
func (h *heldTarget) Async() bool                                { return true }
func (h *heldTarget) ByteOrder() pixel.ByteOrder                 { return pixel.BigEndian }
func (h *heldTarget) MaxTransfer() int                           { return 0 }

func (h *heldTarget) StartPixels(_ image.Rectangle, _ []byte, done func(bool)) error {
	h.done = append(h.done, done)
	return nil
}

func (h *heldTarget) take() []func(bool) {
	d := h.done
	h.done = nil
	return d
}

func TestAbandonReusesDrainedSlots(t *testing.T) {
	ctx := context.Background()
	tgt := &heldTarget{}
	clock := hal.NewFakeClock(time.Unix(0, 0))
	w, err := NewWriter(tgt, Config{MaxChunk: 64, QueueDepth: 2, Timeout: time.Millisecond}, Options{Clock: clock})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	src := canvas.New(8, 8)
	first := &w.slots[0][0]

	if err := w.Write(ctx, src, src.Bounds()); !errors.Is(err, ErrTransferTimeout) {
		t.Fatalf("expected ErrTransferTimeout, got %v", err)
	}
	if s := w.Stats(); s.Timeouts != 1 || s.Reallocations != 1 {
		t.Fatalf("expected 1 timeout and 1 reallocation, got %+v", s)
	}
	if &w.slots[0][0] == first {
		t.Fatalf("expected fresh slots while the abandoned chunks are in flight")
	}
	late := tgt.take()
	if len(late) != 2 {
		t.Fatalf("expected 2 abandoned chunks, got %d", len(late))
	}

	if err := w.Submit(ctx, src, image.Rect(0, 0, 8, 4)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, done := range late {
		done(false)
	}
	if !w.Busy() {
		t.Fatalf("expected late completions to leave the current chunk in flight")
	}
	for _, done := range tgt.take() {
		done(true)
	}
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("expected late failures to be ignored, got %v", err)
	}
	if s := w.Stats(); s.Failures != 0 {
		t.Fatalf("expected 0 failures, got %d", s.Failures)
	}

	if err := w.Write(ctx, src, src.Bounds()); !errors.Is(err, ErrTransferTimeout) {
		t.Fatalf("expected ErrTransferTimeout, got %v", err)
	}
	if &w.slots[0][0] != first {
		t.Fatalf("expected the drained slots to be reused")
	}
	if s := w.Stats(); s.Timeouts != 2 || s.Reallocations != 1 {
		t.Fatalf("expected 2 timeouts and 1 reallocation, got %+v", s)
	}

	// The second abandoned batch is still in flight, so a third timeout
	// cannot reuse its slots.
	if err := w.Write(ctx, src, src.Bounds()); !errors.Is(err, ErrTransferTimeout) {
		t.Fatalf("expected ErrTransferTimeout, got %v", err)
	}
	if s := w.Stats(); s.Timeouts != 3 || s.Reallocations != 2 {
		t.Fatalf("expected 3 timeouts and 2 reallocations, got %+v", s)
	}
}

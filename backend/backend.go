// Package backend is the drawing surface the rest of the firmware sees.
// Two variants exist: BitBang clocks every byte over GPIO, Accelerated
// hands double-buffered frames to a block transfer engine. Both render
// through the same canvas primitives and produce identical panel memory.
package backend

import (
	"context"
	"errors"
	"fmt"
	"image"

	"lcdpipe/canvas"
	"lcdpipe/pixel"
)

var (
	ErrInvalidConfig      = errors.New("backend: invalid configuration")
	ErrInsufficientMemory = errors.New("backend: insufficient memory")
	ErrUnsupported        = errors.New("backend: board lacks the required hardware")
	ErrClosed             = errors.New("backend: closed")
)

type Kind uint8

const (
	KindBitBang Kind = iota
	KindAccelerated
)

func (k Kind) String() string {
	switch k {
	case KindBitBang:
		return "bitbang"
	case KindAccelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "bitbang", "gpio":
		return KindBitBang, nil
	case "accelerated", "dma", "i8080":
		return KindAccelerated, nil
	}
	return 0, fmt.Errorf("%w: backend %q", ErrInvalidConfig, s)
}

// FlushPolicy is how Accelerated.Flush treats the frame it starts.
type FlushPolicy uint8

const (
	// Block waits until the frame reached the panel.
	Block FlushPolicy = iota
	// Poll returns once the frame is queued. The next Flush or Poll
	// collects its result.
	Poll
)

func (p FlushPolicy) String() string {
	if p == Poll {
		return "poll"
	}
	return "block"
}

// Backend is implemented by *BitBang and *Accelerated only.
//
// Draw calls never fail; coordinates outside the screen are clipped.
// Errors from restoring the backlight on activity are held and returned
// by the next Flush.
type Backend interface {
	Clear(c pixel.Color)
	DrawPixel(x, y int, c pixel.Color)
	DrawLine(x0, y0, x1, y1 int, c pixel.Color)
	DrawRect(x, y, w, h int, c pixel.Color)
	FillRect(x, y, w, h int, c pixel.Color)
	DrawCircle(cx, cy, r int, c pixel.Color)
	FillCircle(cx, cy, r int, c pixel.Color)
	DrawProgressBar(x, y, w, h int, percent uint8, fg, bg, border pixel.Color)
	DrawChar(x, y int, r rune, st canvas.TextStyle)
	DrawText(x, y int, s string, st canvas.TextStyle)
	DrawTextCentered(y int, s string, st canvas.TextStyle)

	// Flush sends everything drawn since the last flush.
	Flush(ctx context.Context) error
	// FlushRegion sends r, clipped to the screen, whatever was drawn.
	FlushRegion(ctx context.Context, r image.Rectangle) error

	Width() int
	Height() int

	// UpdateAutoDim is called once per render cycle.
	UpdateAutoDim() error
	ResetActivityTimer()
	EnsureDisplayOn() error
	Sleep() error

	Name() string
	Kind() Kind
	// FPS is the measured full-frame rate, if one was measured.
	FPS() (float64, bool)
	Metrics() Metrics
	Close() error

	base() *core
}

// Package framebuf holds the two canvases of a double-buffered display.
// One half is drawn into while the other is read by the transfer engine.
package framebuf

import (
	"errors"
	"sync/atomic"

	"lcdpipe/canvas"
)

var ErrTransferPending = errors.New("framebuf: inactive buffer is still lent to a transfer")

type DoubleBuffer struct {
	bufs   [2]*canvas.Canvas
	active int
	lent   atomic.Bool
}

// New allocates both halves. Nothing is allocated after this.
func New(w, h int) *DoubleBuffer {
	return &DoubleBuffer{bufs: [2]*canvas.Canvas{canvas.New(w, h), canvas.New(w, h)}}
}

// Bytes is the memory a double buffer of w by h needs.
func Bytes(w, h int) int { return 2 * w * h * 2 }

func (d *DoubleBuffer) Width() int  { return d.bufs[0].Width() }
func (d *DoubleBuffer) Height() int { return d.bufs[0].Height() }

// Active is the half draw calls go to.
func (d *DoubleBuffer) Active() *canvas.Canvas { return d.bufs[d.active] }

// Inactive is the half last presented.
func (d *DoubleBuffer) Inactive() canvas.Reader { return d.bufs[1-d.active] }

// Lent reports whether the inactive half is out on a lease.
func (d *DoubleBuffer) Lent() bool { return d.lent.Load() }

// Swap exchanges the halves. It fails while the inactive half is lent.
func (d *DoubleBuffer) Swap() error {
	if d.lent.Load() {
		return ErrTransferPending
	}
	d.active = 1 - d.active
	return nil
}

// Lend hands the inactive half to a transfer until the lease is released.
func (d *DoubleBuffer) Lend() (*Lease, error) {
	if !d.lent.CompareAndSwap(false, true) {
		return nil, ErrTransferPending
	}
	return &Lease{d: d, buf: d.bufs[1-d.active]}, nil
}

// Lease is a read-only loan of the inactive half.
type Lease struct {
	d        *DoubleBuffer
	buf      *canvas.Canvas
	released atomic.Bool
}

func (l *Lease) Buffer() canvas.Reader { return l.buf }

// Release returns the half. It may be called more than once and from a
// transfer completion callback.
func (l *Lease) Release() {
	if l.released.CompareAndSwap(false, true) {
		l.d.lent.Store(false)
	}
}

// Sync copies the inactive half into the active one, so drawing after a
// swap continues from the presented frame.
func (d *DoubleBuffer) Sync() {
	d.bufs[d.active].CopyFrom(d.bufs[1-d.active])
}

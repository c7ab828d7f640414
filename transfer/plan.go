// Package transfer moves canvas regions to the panel in chunks that fit
// the bus transfer limit and the staging memory alignment.
package transfer

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrInvalidConfig   = errors.New("transfer: invalid configuration")
	ErrChunkTooSmall   = errors.New("transfer: chunk limit below one pixel")
	ErrTransferFailed  = errors.New("transfer: transfer failed")
	ErrTransferTimeout = errors.New("transfer: transfer timed out")
)

// Region is the memory class staging buffers are allocated from.
type Region uint8

const (
	// FastMemory is internal RAM; DMA needs 4-byte alignment there.
	FastMemory Region = iota
	// BulkMemory is external PSRAM; DMA needs cache-line alignment there.
	BulkMemory
)

func (r Region) Alignment() int {
	if r == BulkMemory {
		return 64
	}
	return 4
}

func (r Region) String() string {
	if r == BulkMemory {
		return "bulk"
	}
	return "fast"
}

// Limit is the per-chunk byte limit a Writer uses: maxChunk capped by the
// target's maxTransfer (either may be 0 for none), rounded down to the
// region's alignment and to whole pixels.
func Limit(maxChunk, maxTransfer int, region Region) int {
	n := maxChunk
	if maxTransfer > 0 && (n <= 0 || maxTransfer < n) {
		n = maxTransfer
	}
	return n &^ (region.Alignment() - 1) &^ 1
}

// Chunk is one memory write: a sub-rectangle and its byte span within the
// row-major RGB565 stream of the whole request.
type Chunk struct {
	Rect   image.Rectangle
	Offset int
	Len    int
}

// Plan splits r into chunks of at most maxBytes, rounded down to align.
// Whole rows are grouped while a row fits; wider rows are split at pixel
// boundaries. Chunks come out in stream order.
func Plan(r image.Rectangle, maxBytes, align int) ([]Chunk, error) {
	if align < 1 || align&(align-1) != 0 {
		return nil, fmt.Errorf("%w: alignment %d", ErrInvalidConfig, align)
	}
	limit := maxBytes &^ (align - 1)
	limit &^= 1
	if limit < 2 {
		return nil, fmt.Errorf("%w: %d bytes at alignment %d", ErrChunkTooSmall, maxBytes, align)
	}
	if r.Empty() {
		return nil, nil
	}

	rowBytes := r.Dx() * 2
	var out []Chunk
	off := 0
	if rowBytes <= limit {
		rows := limit / rowBytes
		for y := r.Min.Y; y < r.Max.Y; y += rows {
			y1 := min(y+rows, r.Max.Y)
			n := (y1 - y) * rowBytes
			out = append(out, Chunk{Rect: image.Rect(r.Min.X, y, r.Max.X, y1), Offset: off, Len: n})
			off += n
		}
		return out, nil
	}

	span := limit / 2
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x += span {
			x1 := min(x+span, r.Max.X)
			n := (x1 - x) * 2
			out = append(out, Chunk{Rect: image.Rect(x, y, x1, y+1), Offset: off, Len: n})
			off += n
		}
	}
	return out, nil
}

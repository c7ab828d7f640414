package backend

import (
	"fmt"
	"time"

	"lcdpipe/dirty"
	"lcdpipe/transfer"
)

// Metrics are cumulative counters of one backend.
type Metrics struct {
	DrawCalls   uint64
	Clears      uint64
	TextCalls   uint64
	PixelsDrawn uint64

	Flushes     uint64
	FlushErrors uint64
	PixelsSent  uint64
	FlushTime   time.Duration
	LastFlush   time.Duration

	Dirty    dirty.Stats
	Transfer transfer.Stats
}

// Report formats m as log lines.
func (m Metrics) Report(name string) []string {
	perFlush := func(v uint64) float64 {
		if m.Flushes == 0 {
			return 0
		}
		return float64(v) / float64(m.Flushes)
	}
	lines := []string{
		fmt.Sprintf("%s: %d flushes (%d failed), %.0f px/flush, %.1f draws/flush",
			name, m.Flushes, m.FlushErrors, perFlush(m.PixelsSent), perFlush(m.DrawCalls)),
		fmt.Sprintf("%s: clear %d, text %d, dirty %d (merged %d)",
			name, m.Clears, m.TextCalls, m.Dirty.Added, m.Dirty.Merges),
		fmt.Sprintf("%s: flush time %v total, %v last; %d chunks, %d bytes, %d timeouts",
			name, m.FlushTime, m.LastFlush, m.Transfer.Chunks, m.Transfer.Bytes, m.Transfer.Timeouts),
	}
	if m.FlushTime > 0 && m.PixelsSent > 0 {
		lines = append(lines, fmt.Sprintf("%s: %.0f px/ms", name, float64(m.PixelsSent)/(m.FlushTime.Seconds()*1000)))
	}
	return lines
}

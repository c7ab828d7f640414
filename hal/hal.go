package hal

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Pin is a single push-pull output line.
type Pin interface {
	Set(high bool) error
}

// Backlight sets the panel backlight level. 0 is off and 255 is full.
type Backlight interface {
	SetLevel(level uint8) error
}

// Watchdog is fed by long-running blocking work.
type Watchdog interface {
	Feed()
}

// Clock provides time for settle delays, timeouts and activity tracking.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// BlockTransfer is a hardware engine that clocks bytes onto the 8080 bus
// without per-byte CPU work.
//
// Command issues cmd with DC low followed by params with DC high. It waits
// for every started transfer to drain first, so commands never interleave
// with pixel data. Start queues p as data (DC high) and returns at once;
// done is called exactly once, possibly from another goroutine, and must
// only touch atomics. p must stay untouched until done runs.
type BlockTransfer interface {
	Command(cmd byte, params []byte) error
	Start(p []byte, done func(ok bool)) error
	// MaxTransfer is the largest p accepted by Start.
	MaxTransfer() int
}

// ClockedTransfer is a BlockTransfer whose bus write clock can be set.
type ClockedTransfer interface {
	BlockTransfer
	SetClock(f physic.Frequency) error
}

// BusPins are the 13 lines of an 8-bit 8080 write-only bus.
type BusPins struct {
	Data [8]Pin
	WR   Pin
	DC   Pin
	CS   Pin
	// RST may be nil when the panel reset line is not wired.
	RST Pin
}

// Memory describes how much buffer memory the board can give the display.
type Memory struct {
	// Fast is internal RAM usable for transfer buffers.
	Fast int
	// Bulk is slower external RAM (PSRAM) with stricter alignment.
	Bulk int
}

// HAL is the only contact point between the display pipeline and the board.
type HAL interface {
	Logger() Logger
	Clock() Clock
	Watchdog() Watchdog
	Backlight() Backlight
	// Pins returns nil when the board cannot bit-bang the bus.
	Pins() *BusPins
	// Transfer returns nil when the board has no block transfer engine.
	Transfer() BlockTransfer
	// Reset is the panel reset line used together with Transfer.
	Reset() Pin
	Memory() Memory
}

var ErrNotImplemented = errors.New("not implemented")

// Discard is a Logger that drops every line.
var Discard Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) WriteLineString(string) {}
func (discardLogger) WriteLineBytes([]byte)  {}

// NopWatchdog ignores feeds.
type NopWatchdog struct{}

func (NopWatchdog) Feed() {}

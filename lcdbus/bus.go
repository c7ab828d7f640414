// Package lcdbus drives the 8-bit Intel 8080 write bus between the MCU and
// the panel controller.
package lcdbus

import "errors"

var (
	ErrMissingPin = errors.New("lcdbus: bus pin not wired")
	ErrTimeout    = errors.New("lcdbus: transfer did not complete")
	ErrFailed     = errors.New("lcdbus: transfer failed")
)

// Bus writes commands and data to the controller. DC is low for a command
// byte and high for everything that follows it.
type Bus interface {
	// SetReset drives the active-low reset line. It does nothing when the
	// line is not wired.
	SetReset(high bool) error
	HasReset() bool
	Command(cmd byte, params []byte) error
	Data(p []byte) error
	// MaxTransfer is the largest Data payload accepted in one call, or 0
	// when unlimited.
	MaxTransfer() int
}

// AsyncBus can hand data to a block transfer engine and return before it
// reaches the panel.
type AsyncBus interface {
	Bus
	// StartData queues p. done runs exactly once, possibly on another
	// goroutine, and p must not be modified before it does.
	StartData(p []byte, done func(ok bool)) error
}

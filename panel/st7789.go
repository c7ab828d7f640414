// Package panel implements the ST7789 command protocol: the ordered init
// sequence with its settle delays, window addressing and memory writes.
package panel

import (
	"errors"
	"fmt"
	"time"

	"lcdpipe/pixel"
)

// ST7789 command set used by the controller.
const (
	CmdNOP     = 0x00
	CmdSWRESET = 0x01
	CmdSLPIN   = 0x10
	CmdSLPOUT  = 0x11
	CmdNORON   = 0x13
	CmdINVOFF  = 0x20
	CmdINVON   = 0x21
	CmdDISPOFF = 0x28
	CmdDISPON  = 0x29
	CmdCASET   = 0x2A
	CmdRASET   = 0x2B
	CmdRAMWR   = 0x2C
	CmdMADCTL  = 0x36
	CmdCOLMOD  = 0x3A
)

// MADCTL bits.
const (
	MirrorY  = 0x80
	MirrorX  = 0x40
	SwapXY   = 0x20
	BottomUp = 0x10
	BGR      = 0x08

	Landscape = SwapXY | MirrorX
)

// ColorMode16 selects 16 bits per pixel on the 8-bit interface.
const ColorMode16 = 0x55

var (
	ErrInvalidConfig = errors.New("panel: invalid configuration")
	ErrBadTransition = errors.New("panel: out-of-order state transition")
	ErrNotReady      = errors.New("panel: controller not ready")
	ErrOutOfBounds   = errors.New("panel: window outside panel")
	ErrSizeMismatch  = errors.New("panel: payload does not match window")
	ErrUnchunked     = errors.New("panel: memory write exceeds bus transfer limit")
	ErrNotAsync      = errors.New("panel: bus has no block transfer engine")
	ErrFixedGeometry = errors.New("panel: address mode would change panel geometry")
)

// Config fixes panel geometry and timing. It does not change after New.
type Config struct {
	Width, Height int
	// XOffset and YOffset locate the glass inside controller memory.
	XOffset, YOffset int
	AddressMode      byte
	Invert           bool
	Order            pixel.ByteOrder
	// ClearMemory wipes all controller memory during init so no power-on
	// garbage shows outside the visible window.
	ClearMemory bool

	ResetPulse      time.Duration
	ResetSettle     time.Duration
	SoftResetSettle time.Duration
	SleepOutSettle  time.Duration
	DisplayOnSettle time.Duration
}

// DefaultConfig is a 320x170 ST7789 in landscape.
func DefaultConfig() Config {
	return Config{
		Width:           320,
		Height:          170,
		YOffset:         35,
		AddressMode:     Landscape,
		Invert:          true,
		Order:           pixel.BigEndian,
		ClearMemory:     true,
		ResetPulse:      10 * time.Millisecond,
		ResetSettle:     120 * time.Millisecond,
		SoftResetSettle: 150 * time.Millisecond,
		SleepOutSettle:  120 * time.Millisecond,
		DisplayOnSettle: 20 * time.Millisecond,
	}
}

// memorySize is the controller memory in address order for mode.
func memorySize(mode byte) (cols, rows int) {
	if mode&SwapXY != 0 {
		return 320, 240
	}
	return 240, 320
}

func (c Config) Validate() error {
	cols, rows := memorySize(c.AddressMode)
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.XOffset < 0 || c.YOffset < 0:
		return fmt.Errorf("%w: negative offset", ErrInvalidConfig)
	case c.XOffset+c.Width > cols || c.YOffset+c.Height > rows:
		return fmt.Errorf("%w: %dx%d at %d,%d exceeds %dx%d controller memory", ErrInvalidConfig, c.Width, c.Height, c.XOffset, c.YOffset, cols, rows)
	case c.ResetSettle < 120*time.Millisecond:
		return fmt.Errorf("%w: reset settle %v below 120ms", ErrInvalidConfig, c.ResetSettle)
	case c.SoftResetSettle < 150*time.Millisecond:
		return fmt.Errorf("%w: software reset settle %v below 150ms", ErrInvalidConfig, c.SoftResetSettle)
	case c.SleepOutSettle < 120*time.Millisecond:
		return fmt.Errorf("%w: sleep-out settle %v below 120ms", ErrInvalidConfig, c.SleepOutSettle)
	}
	return nil
}

//go:build tinygo && rp2040

package hal

import (
	"errors"
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
	"periph.io/x/conn/v3/physic"
)

// Pimoroni Tufty 2040 wiring.
const (
	csPin  = machine.GP10
	dcPin  = machine.GP11
	wrPin  = machine.GP12
	rdPin  = machine.GP13
	db0Pin = machine.GP14
	blPin  = machine.GP2
)

const pioMaxTransfer = 32 << 10

// New returns an RP2040 board whose block transfer engine is a PIO state
// machine clocking the 8-bit bus.
func New() HAL {
	rdPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	rdPin.High()
	cs := outPin(csPin)
	cs.Set(false)

	bl := blPin
	bl.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &Board{
		Log:    newUARTLogger(),
		Clk:    SystemClock{},
		WD:     startWatchdog(),
		Light:  &pinBacklight{pin: bl},
		Engine: &pioEngine{dc: outPin(dcPin), baud: 48_000_000},
		Mem:    Memory{Fast: 200 << 10},
	}
}

// pioEngine drives the bus through piolib.Parallel8Tx. The state machine
// is claimed on first use.
type pioEngine struct {
	pl   *piolib.Parallel8Tx
	dc   Pin
	baud uint32
	err  error
}

func (e *pioEngine) init() error {
	if e.pl != nil || e.err != nil {
		return e.err
	}
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		e.err = err
		return err
	}
	e.pl, e.err = piolib.NewParallel8Tx(sm, wrPin, db0Pin, e.baud)
	return e.err
}

func (e *pioEngine) Command(cmd byte, params []byte) error {
	if err := e.init(); err != nil {
		return err
	}
	e.dc.Set(false)
	if err := e.pl.Write([]byte{cmd}); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	e.dc.Set(true)
	return e.pl.Write(params)
}

// Start pushes p through the PIO FIFO. Writes complete before Start
// returns, so done runs on the caller's goroutine.
func (e *pioEngine) Start(p []byte, done func(ok bool)) error {
	if err := e.init(); err != nil {
		return err
	}
	if len(p) > pioMaxTransfer {
		return errors.New("pio: transfer too large")
	}
	e.dc.Set(true)
	err := e.pl.Write(p)
	done(err == nil)
	return nil
}

func (e *pioEngine) MaxTransfer() int { return pioMaxTransfer }

// SetClock sets the WR strobe rate. It must come before the first
// transfer claims the state machine.
func (e *pioEngine) SetClock(f physic.Frequency) error {
	if e.pl != nil {
		return errors.New("pio: clock fixed once running")
	}
	e.baud = uint32(f / physic.Hertz)
	return nil
}

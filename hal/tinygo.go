//go:build tinygo && baremetal && !rp2040

package hal

import "machine"

// Pin assignment of the LilyGo T-Display-S3 8080 header.
const (
	pinD0 machine.Pin = 39
	pinD1 machine.Pin = 40
	pinD2 machine.Pin = 41
	pinD3 machine.Pin = 42
	pinD4 machine.Pin = 45
	pinD5 machine.Pin = 46
	pinD6 machine.Pin = 47
	pinD7 machine.Pin = 48
	pinWR machine.Pin = 8
	pinDC machine.Pin = 7
	pinCS machine.Pin = 6
	pinRS machine.Pin = 5
	pinRD machine.Pin = 9
	pinBL machine.Pin = 38
	pinPW machine.Pin = 15
)

// New returns a bit-bang only board; this target has no block transfer
// engine under TinyGo.
func New() HAL {
	// Panel power and the unused read strobe must be held high.
	machine.Pin(pinPW).Configure(machine.PinConfig{Mode: machine.PinOutput})
	machine.Pin(pinPW).High()
	machine.Pin(pinRD).Configure(machine.PinConfig{Mode: machine.PinOutput})
	machine.Pin(pinRD).High()

	pins := &BusPins{
		Data: [8]Pin{
			outPin(pinD0), outPin(pinD1), outPin(pinD2), outPin(pinD3),
			outPin(pinD4), outPin(pinD5), outPin(pinD6), outPin(pinD7),
		},
		WR:  outPin(pinWR),
		DC:  outPin(pinDC),
		CS:  outPin(pinCS),
		RST: outPin(pinRS),
	}
	pins.WR.Set(true)
	pins.CS.Set(true)

	bl := machine.Pin(pinBL)
	bl.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &Board{
		Log:     newUARTLogger(),
		Clk:     SystemClock{},
		WD:      startWatchdog(),
		Light:   &pinBacklight{pin: bl},
		BusPins: pins,
		Mem:     Memory{Fast: 256 << 10, Bulk: 8 << 20},
	}
}

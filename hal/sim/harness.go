package sim

import (
	"fmt"

	"lcdpipe/hal"
)

// Harness connects virtual pins to a Panel. A byte is latched on the
// rising edge of WR while CS is low; DC selects command or data.
type Harness struct {
	p    *Panel
	data [8]*hal.VirtualPin
	wr   *hal.VirtualPin
	dc   *hal.VirtualPin
	cs   *hal.VirtualPin
	rst  *hal.VirtualPin

	strobes uint64
}

func NewHarness(p *Panel) *Harness {
	h := &Harness{p: p}
	for i := range h.data {
		h.data[i] = hal.NewVirtualPin(fmt.Sprintf("D%d", i), nil)
	}
	h.dc = hal.NewVirtualPin("DC", nil)
	h.cs = hal.NewVirtualPin("CS", nil)
	h.wr = hal.NewVirtualPin("WR", h.onWR)
	h.rst = hal.NewVirtualPin("RST", p.SetReset)
	// Idle bus: strobe and chip select high, reset released.
	h.cs.Set(true)
	h.wr.Set(true)
	h.rst.Set(true)
	return h
}

func (h *Harness) onWR(high bool) {
	if !high || h.cs.Level() {
		return
	}
	var b byte
	for i, pin := range h.data {
		if pin.Level() {
			b |= 1 << i
		}
	}
	h.strobes++
	if h.dc.Level() {
		h.p.WriteData([]byte{b})
		return
	}
	h.p.WriteCommand(b)
}

// Pins returns the bus lines for a bit-bang driver.
func (h *Harness) Pins() *hal.BusPins {
	pins := &hal.BusPins{WR: h.wr, DC: h.dc, CS: h.cs, RST: h.rst}
	for i, p := range h.data {
		pins.Data[i] = p
	}
	return pins
}

// ResetPin is the shared panel reset line.
func (h *Harness) ResetPin() *hal.VirtualPin { return h.rst }

// Strobes counts latched bus cycles.
func (h *Harness) Strobes() uint64 { return h.strobes }

// Pin returns a bus line by name ("D0".."D7", "WR", "DC", "CS", "RST"),
// or nil.
func (h *Harness) Pin(name string) *hal.VirtualPin {
	switch name {
	case "WR":
		return h.wr
	case "DC":
		return h.dc
	case "CS":
		return h.cs
	case "RST":
		return h.rst
	}
	for _, p := range h.data {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

package lcdbus

import (
	"fmt"

	"lcdpipe/hal"
)

// feedEvery is how many bytes the bit-bang loop writes between watchdog
// feeds.
const feedEvery = 8 << 10

// BitBang toggles GPIO lines for every byte: data lines first, then a low
// to high pulse on WR. Only data lines whose level changes are touched.
type BitBang struct {
	pins  hal.BusPins
	wd    hal.Watchdog
	max   int
	last  byte
	known bool
	since int
}

// NewBitBang takes over pins. maxTransfer caps a single Data call; 0 leaves
// it unlimited.
func NewBitBang(pins *hal.BusPins, wd hal.Watchdog, maxTransfer int) (*BitBang, error) {
	if pins == nil {
		return nil, ErrMissingPin
	}
	for i, p := range pins.Data {
		if p == nil {
			return nil, fmt.Errorf("D%d: %w", i, ErrMissingPin)
		}
	}
	if pins.WR == nil || pins.DC == nil || pins.CS == nil {
		return nil, fmt.Errorf("WR/DC/CS: %w", ErrMissingPin)
	}
	if wd == nil {
		wd = hal.NopWatchdog{}
	}
	b := &BitBang{pins: *pins, wd: wd, max: maxTransfer}
	for _, p := range []hal.Pin{b.pins.CS, b.pins.WR, b.pins.DC} {
		if err := p.Set(true); err != nil {
			return nil, fmt.Errorf("lcdbus: idle bus: %w", err)
		}
	}
	return b, nil
}

func (b *BitBang) HasReset() bool { return b.pins.RST != nil }

func (b *BitBang) SetReset(high bool) error {
	if b.pins.RST == nil {
		return nil
	}
	return b.pins.RST.Set(high)
}

func (b *BitBang) MaxTransfer() int { return b.max }

func (b *BitBang) Command(cmd byte, params []byte) error {
	if err := b.pins.CS.Set(false); err != nil {
		return fmt.Errorf("lcdbus: select: %w", err)
	}
	err := b.pins.DC.Set(false)
	if err == nil {
		err = b.write(cmd)
	}
	if err == nil && len(params) > 0 {
		if err = b.pins.DC.Set(true); err == nil {
			err = b.writeAll(params)
		}
	}
	if derr := b.pins.CS.Set(true); err == nil {
		err = derr
	}
	if err != nil {
		return fmt.Errorf("lcdbus: command %#02x: %w", cmd, err)
	}
	return nil
}

func (b *BitBang) Data(p []byte) error {
	if b.max > 0 && len(p) > b.max {
		return fmt.Errorf("lcdbus: %d byte write exceeds %d: %w", len(p), b.max, ErrFailed)
	}
	if err := b.pins.CS.Set(false); err != nil {
		return fmt.Errorf("lcdbus: select: %w", err)
	}
	err := b.pins.DC.Set(true)
	if err == nil {
		err = b.writeAll(p)
	}
	if derr := b.pins.CS.Set(true); err == nil {
		err = derr
	}
	if err != nil {
		return fmt.Errorf("lcdbus: data: %w", err)
	}
	return nil
}

func (b *BitBang) writeAll(p []byte) error {
	for _, v := range p {
		if err := b.write(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *BitBang) write(v byte) error {
	diff := byte(0xFF)
	if b.known {
		diff = v ^ b.last
	}
	for i := 0; i < 8; i++ {
		if diff&(1<<i) == 0 {
			continue
		}
		if err := b.pins.Data[i].Set(v&(1<<i) != 0); err != nil {
			b.known = false
			return err
		}
	}
	b.last, b.known = v, true

	if err := b.pins.WR.Set(false); err != nil {
		return err
	}
	if err := b.pins.WR.Set(true); err != nil {
		return err
	}

	b.since++
	if b.since >= feedEvery {
		b.since = 0
		b.wd.Feed()
	}
	return nil
}

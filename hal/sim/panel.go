// Package sim models an ST7789 panel on an 8-bit 8080 bus, down to the
// pin level, so the display pipeline can run and be verified without
// hardware.
package sim

import (
	"fmt"
	"sync"
	"time"

	"lcdpipe/hal"
	"lcdpipe/pixel"
)

// Controller memory is 240x320; with row/column exchange it addresses as
// 320x240.
const (
	ramShort = 240
	ramLong  = 320
)

// Settle times the model enforces between commands.
const (
	resetSettle     = 120 * time.Millisecond
	softResetSettle = 150 * time.Millisecond
	sleepOutSettle  = 120 * time.Millisecond
)

// maxTrace bounds the command trace of long-running previews.
const maxTrace = 4096

const (
	cmdNOP     = 0x00
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
	cmdWRDISBV = 0x51

	madctlMV = 0x20
)

// PanelConfig describes the visible glass inside controller memory.
type PanelConfig struct {
	Width, Height    int
	XOffset, YOffset int
	// Order is the byte order the panel decodes pixels with.
	Order pixel.ByteOrder
	Clock hal.Clock
}

// DefaultPanelConfig is a 320x170 landscape panel.
func DefaultPanelConfig(clock hal.Clock) PanelConfig {
	return PanelConfig{Width: 320, Height: 170, YOffset: 35, Order: pixel.BigEndian, Clock: clock}
}

// Command is one traced command with its parameters. RAMWR payloads are
// counted rather than stored.
type Command struct {
	Code      byte
	Params    []byte
	DataBytes int
	At        time.Time
}

// Panel is the controller model. It is safe for concurrent use.
type Panel struct {
	mu    sync.Mutex
	cfg   PanelConfig
	clock hal.Clock

	gram []pixel.Color

	inReset    bool
	busyUntil  time.Time
	asleep     bool
	displayOn  bool
	inverted   bool
	madctl     byte
	colmod     byte
	brightness byte

	cur     int // index into trace of the active command, -1 before any
	colSet  bool
	rowSet  bool
	writing bool
	xs, xe  int
	ys, ye  int
	px, py  int
	hi      byte
	half    bool

	trace      []Command
	violations []string
}

func NewPanel(cfg PanelConfig) *Panel {
	if cfg.Clock == nil {
		cfg.Clock = hal.SystemClock{}
	}
	p := &Panel{
		cfg:   cfg,
		clock: cfg.Clock,
		gram:  make([]pixel.Color, ramLong*ramLong),
		cur:   -1,
	}
	p.powerOnDefaults()
	return p
}

func (p *Panel) powerOnDefaults() {
	p.asleep = true
	p.displayOn = false
	p.inverted = false
	p.madctl = 0
	p.colmod = 0x66
	p.colSet, p.rowSet, p.writing = false, false, false
	p.xs, p.xe, p.ys, p.ye = 0, ramShort-1, 0, ramLong-1
	p.half = false
}

// SetReset drives the active-low reset line.
func (p *Panel) SetReset(high bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !high {
		p.inReset = true
		p.powerOnDefaults()
		return
	}
	if p.inReset {
		p.inReset = false
		p.busyUntil = p.clock.Now().Add(resetSettle)
	}
}

// WriteCommand is one bus cycle with DC low.
func (p *Panel) WriteCommand(cmd byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.command(cmd)
}

// WriteData clocks bytes with DC high.
func (p *Panel) WriteData(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range b {
		p.data(v)
	}
}

func (p *Panel) command(cmd byte) {
	if p.inReset {
		p.violate("command %#02x while reset is held", cmd)
		return
	}
	now := p.clock.Now()
	if now.Before(p.busyUntil) {
		p.violate("command %#02x sent %v before the controller settled", cmd, p.busyUntil.Sub(now))
	}
	if len(p.trace) >= maxTrace {
		n := copy(p.trace, p.trace[maxTrace/2:])
		p.trace = p.trace[:n]
	}
	p.trace = append(p.trace, Command{Code: cmd, At: now})
	p.cur = len(p.trace) - 1
	p.half = false
	p.writing = false

	switch cmd {
	case cmdCASET, cmdRASET, cmdNOP:
	case cmdRAMWR:
		if !p.colSet || !p.rowSet {
			p.violate("memory write without a fresh window")
			return
		}
		p.writing = true
		p.px, p.py = p.xs, p.ys
	default:
		p.colSet, p.rowSet = false, false
	}

	switch cmd {
	case cmdSWRESET:
		p.powerOnDefaults()
		p.busyUntil = now.Add(softResetSettle)
	case cmdSLPIN:
		p.asleep = true
	case cmdSLPOUT:
		p.asleep = false
		p.busyUntil = now.Add(sleepOutSettle)
	case cmdDISPON:
		p.displayOn = true
	case cmdDISPOFF:
		p.displayOn = false
	case cmdINVON:
		p.inverted = true
	case cmdINVOFF:
		p.inverted = false
	}
}

func (p *Panel) data(v byte) {
	if p.inReset {
		return
	}
	if p.cur < 0 {
		p.violate("data byte before any command")
		return
	}
	c := &p.trace[p.cur]
	if c.Code == cmdRAMWR {
		c.DataBytes++
		p.pixelByte(v)
		return
	}
	c.Params = append(c.Params, v)
	switch c.Code {
	case cmdCASET:
		if len(c.Params) == 4 {
			p.xs, p.xe = be16(c.Params[0:]), be16(c.Params[2:])
			p.colSet = p.checkRange("column", p.xs, p.xe, p.cols())
		}
	case cmdRASET:
		if len(c.Params) == 4 {
			p.ys, p.ye = be16(c.Params[0:]), be16(c.Params[2:])
			p.rowSet = p.checkRange("row", p.ys, p.ye, p.rows())
		}
	case cmdMADCTL:
		p.madctl = v
	case cmdCOLMOD:
		p.colmod = v
	case cmdWRDISBV:
		p.brightness = v
	}
}

func (p *Panel) pixelByte(v byte) {
	if !p.writing {
		return
	}
	if !p.half {
		p.hi = v
		p.half = true
		return
	}
	p.half = false
	if p.colmod&0x0F != 0x05 {
		p.violate("pixel data in color mode %#02x", p.colmod)
		p.writing = false
		return
	}
	c := p.cfg.Order.Get([]byte{p.hi, v})
	p.gram[p.py*ramLong+p.px] = c
	p.px++
	if p.px > p.xe {
		p.px = p.xs
		p.py++
		if p.py > p.ye {
			p.py = p.ys
		}
	}
}

func (p *Panel) cols() int {
	if p.madctl&madctlMV != 0 {
		return ramLong
	}
	return ramShort
}

func (p *Panel) rows() int {
	if p.madctl&madctlMV != 0 {
		return ramShort
	}
	return ramLong
}

func (p *Panel) checkRange(what string, start, end, limit int) bool {
	if start > end || end >= limit {
		p.violate("%s range %d..%d outside 0..%d", what, start, end, limit-1)
		return false
	}
	return true
}

func (p *Panel) violate(format string, args ...any) {
	if len(p.violations) >= maxTrace {
		return
	}
	p.violations = append(p.violations, fmt.Sprintf(format, args...))
}

func be16(b []byte) int { return int(b[0])<<8 | int(b[1]) }

// Size implements hal.Screen.
func (p *Panel) Size() (int, int) { return p.cfg.Width, p.cfg.Height }

// Snapshot implements hal.Screen. A sleeping or blanked panel shows black.
func (p *Panel) Snapshot(dst []pixel.Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	lit := p.displayOn && !p.asleep
	for y := 0; y < p.cfg.Height; y++ {
		row := dst[y*p.cfg.Width : (y+1)*p.cfg.Width]
		if !lit {
			for i := range row {
				row[i] = pixel.Black
			}
			continue
		}
		src := (y+p.cfg.YOffset)*ramLong + p.cfg.XOffset
		copy(row, p.gram[src:src+p.cfg.Width])
	}
}

// Pixel reads visible pixel (x, y) from controller memory regardless of
// power state.
func (p *Panel) Pixel(x, y int) pixel.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gram[(y+p.cfg.YOffset)*ramLong+x+p.cfg.XOffset]
}

// Commands returns a copy of the command trace.
func (p *Panel) Commands() []Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Command, len(p.trace))
	copy(out, p.trace)
	return out
}

// ResetTrace drops the recorded commands and violations.
func (p *Panel) ResetTrace() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = p.trace[:0]
	p.violations = nil
	p.cur = -1
}

// Violations lists protocol errors seen so far.
func (p *Panel) Violations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.violations...)
}

// Status is the externally visible controller state.
type Status struct {
	Asleep    bool
	DisplayOn bool
	Inverted  bool
	MADCTL    byte
	COLMOD    byte
}

func (p *Panel) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Asleep:    p.asleep,
		DisplayOn: p.displayOn,
		Inverted:  p.inverted,
		MADCTL:    p.madctl,
		COLMOD:    p.colmod,
	}
}

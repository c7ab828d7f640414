package hal

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// VirtualPin is an in-memory output line. It backs the simulated panel
// and the tests.
type VirtualPin struct {
	mu       sync.Mutex
	name     string
	level    bool
	edges    uint64
	fault    error
	onChange func(high bool)
}

// NewVirtualPin returns a low pin. onChange, if non-nil, is called after
// every level transition.
func NewVirtualPin(name string, onChange func(high bool)) *VirtualPin {
	if strings.TrimSpace(name) == "" {
		name = "?"
	}
	return &VirtualPin{name: name, onChange: onChange}
}

func (p *VirtualPin) Name() string { return p.name }

func (p *VirtualPin) Set(high bool) error {
	p.mu.Lock()
	if p.fault != nil {
		err := p.fault
		p.mu.Unlock()
		return fmt.Errorf("gpio: pin %s: %w", p.name, err)
	}
	changed := p.level != high
	p.level = high
	if changed {
		p.edges++
	}
	cb := p.onChange
	p.mu.Unlock()

	if changed && cb != nil {
		cb(high)
	}
	return nil
}

func (p *VirtualPin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Edges counts level transitions since creation.
func (p *VirtualPin) Edges() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edges
}

// SetFault makes every following Set fail with err. A nil err clears it.
func (p *VirtualPin) SetFault(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fault = err
}

// VirtualBacklight records the most recent level.
type VirtualBacklight struct {
	level atomic.Uint32
	sets  atomic.Uint32
}

func (b *VirtualBacklight) SetLevel(level uint8) error {
	b.level.Store(uint32(level))
	b.sets.Add(1)
	return nil
}

func (b *VirtualBacklight) Level() uint8 { return uint8(b.level.Load()) }

// Sets counts calls to SetLevel.
func (b *VirtualBacklight) Sets() int { return int(b.sets.Load()) }

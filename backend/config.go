package backend

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"

	"lcdpipe/framebuf"
	"lcdpipe/hal"
	"lcdpipe/panel"
	"lcdpipe/power"
	"lcdpipe/transfer"
)

// Preset names one tuning of clock, chunk size and queue depth.
type Preset uint8

const (
	Conservative Preset = iota
	Balanced
	Performance
	MaxThroughput
)

type presetInfo struct {
	name         string
	clock        physic.Frequency
	chunkLines   int
	queueDepth   int
	doubleBuffer bool
}

var presets = [...]presetInfo{
	Conservative:  {"conservative", 24 * physic.MegaHertz, 50, 8, false},
	Balanced:      {"balanced", 30 * physic.MegaHertz, 100, 10, true},
	Performance:   {"performance", 40 * physic.MegaHertz, 150, 12, true},
	MaxThroughput: {"max-throughput", 48 * physic.MegaHertz, 100, 15, true},
}

func (p Preset) String() string {
	if int(p) < len(presets) {
		return presets[p].name
	}
	return "unknown"
}

// Presets lists every preset from most to least conservative.
func Presets() []Preset {
	return []Preset{Conservative, Balanced, Performance, MaxThroughput}
}

func ParsePreset(s string) (Preset, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if s == "max" {
		return MaxThroughput, nil
	}
	for i, info := range presets {
		if info.name == s {
			return Preset(i), nil
		}
	}
	return 0, fmt.Errorf("%w: preset %q", ErrInvalidConfig, s)
}

// Config is fixed once a backend is built.
type Config struct {
	Kind   Kind
	Preset Preset
	// BusClock is the WR strobe rate asked of the block transfer engine.
	BusClock physic.Frequency
	// ChunkLines is the largest transfer in panel rows.
	ChunkLines int
	// MaxTransfer is the engine's limit on one transfer, 0 if unknown.
	// It only sharpens MemoryNeeded; the writer asks the bus directly.
	MaxTransfer  int
	QueueDepth   int
	DoubleBuffer bool
	Region       transfer.Region
	// DirtyTracking flushes only the changed areas.
	DirtyTracking bool
	Policy        FlushPolicy
	// Timeout bounds each wait for the transfer engine.
	Timeout time.Duration
	// ReportEvery logs metrics after this many flushes; 0 disables.
	ReportEvery int

	Panel panel.Config
	Dim   power.DimConfig
}

// PresetConfig is the accelerated configuration for p with default panel
// and dimming settings.
func PresetConfig(p Preset) Config {
	info := presets[Conservative]
	if int(p) < len(presets) {
		info = presets[p]
	}
	return Config{
		Kind:          KindAccelerated,
		Preset:        p,
		BusClock:      info.clock,
		ChunkLines:    info.chunkLines,
		QueueDepth:    info.queueDepth,
		DoubleBuffer:  info.doubleBuffer,
		Region:        transfer.FastMemory,
		DirtyTracking: true,
		Policy:        Block,
		Timeout:       time.Second,
		Panel:         panel.DefaultConfig(),
		Dim:           power.DefaultDimConfig(),
	}
}

func (c Config) Validate() error {
	switch {
	case c.Kind != KindBitBang && c.Kind != KindAccelerated:
		return fmt.Errorf("%w: kind %d", ErrInvalidConfig, c.Kind)
	case int(c.Preset) >= len(presets):
		return fmt.Errorf("%w: preset %d", ErrInvalidConfig, c.Preset)
	case c.BusClock < physic.MegaHertz || c.BusClock > 80*physic.MegaHertz:
		return fmt.Errorf("%w: bus clock %s", ErrInvalidConfig, c.BusClock)
	case c.ChunkLines < 1 || c.ChunkLines > c.Panel.Height:
		return fmt.Errorf("%w: chunk of %d lines", ErrInvalidConfig, c.ChunkLines)
	case c.QueueDepth < 1 || c.QueueDepth > 32:
		return fmt.Errorf("%w: queue depth %d", ErrInvalidConfig, c.QueueDepth)
	case c.Region != transfer.FastMemory && c.Region != transfer.BulkMemory:
		return fmt.Errorf("%w: region %d", ErrInvalidConfig, c.Region)
	case c.Policy != Block && c.Policy != Poll:
		return fmt.Errorf("%w: flush policy %d", ErrInvalidConfig, c.Policy)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout %v", ErrInvalidConfig, c.Timeout)
	case c.ReportEvery < 0:
		return fmt.Errorf("%w: report interval %d", ErrInvalidConfig, c.ReportEvery)
	}
	if err := c.Panel.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Dim.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ChunkBytes is the transfer limit in bytes.
func (c Config) ChunkBytes() int { return c.ChunkLines * c.Panel.Width * 2 }

// MemoryNeeded is the buffer memory the configuration allocates: one or
// two canvases plus the staging slots.
func (c Config) MemoryNeeded() int {
	frame := c.Panel.Width * c.Panel.Height * 2
	if c.DoubleBuffer && c.Kind == KindAccelerated {
		frame = framebuf.Bytes(c.Panel.Width, c.Panel.Height)
	}
	slots := c.QueueDepth
	if c.Kind == KindBitBang {
		slots = 1
	}
	return frame + slots*transfer.Limit(c.ChunkBytes(), c.MaxTransfer, c.Region)
}

// Select fits preset p into the memory of hw, sizing staging slots by the
// engine's transfer limit. The double buffer goes to fast memory if it
// fits, then bulk memory; failing both it is dropped, and failing that too
// selection fails.
func Select(hw hal.HAL, p Preset) (Config, error) {
	if int(p) >= len(presets) {
		return Config{}, fmt.Errorf("%w: preset %d", ErrInvalidConfig, p)
	}
	mem := hw.Memory()
	cfg := PresetConfig(p)
	if eng := hw.Transfer(); eng != nil {
		cfg.MaxTransfer = eng.MaxTransfer()
	}
	if cfg.DoubleBuffer {
		if c, ok := place(cfg, mem); ok {
			return c, nil
		}
		cfg.DoubleBuffer = false
	}
	if c, ok := place(cfg, mem); ok {
		return c, nil
	}
	return Config{}, fmt.Errorf("%w: %s needs %d bytes, have %d fast and %d bulk",
		ErrInsufficientMemory, p, cfg.MemoryNeeded(), mem.Fast, mem.Bulk)
}

func place(cfg Config, mem hal.Memory) (Config, bool) {
	for _, r := range []struct {
		region transfer.Region
		size   int
	}{{transfer.FastMemory, mem.Fast}, {transfer.BulkMemory, mem.Bulk}} {
		cfg.Region = r.region
		if cfg.MemoryNeeded() <= r.size {
			return cfg, true
		}
	}
	return cfg, false
}

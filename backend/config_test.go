package backend

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"

	"lcdpipe/hal"
	"lcdpipe/transfer"
)

func TestPresetTable(t *testing.T) {
	cases := []struct {
		name  string
		clock physic.Frequency
		lines int
		queue int
		db    bool
	}{
		{"conservative", 24 * physic.MegaHertz, 50, 8, false},
		{"balanced", 30 * physic.MegaHertz, 100, 10, true},
		{"performance", 40 * physic.MegaHertz, 150, 12, true},
		{"max-throughput", 48 * physic.MegaHertz, 100, 15, true},
	}
	for _, c := range cases {
		p, err := ParsePreset(c.name)
		if err != nil {
			t.Fatalf("ParsePreset(%q): %v", c.name, err)
		}
		if p.String() != c.name {
			t.Fatalf("expected name %q, got %q", c.name, p.String())
		}
		cfg := PresetConfig(p)
		if cfg.BusClock != c.clock || cfg.ChunkLines != c.lines || cfg.QueueDepth != c.queue || cfg.DoubleBuffer != c.db {
			t.Fatalf("%s: unexpected config %+v", c.name, cfg)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%s: expected a valid config, got %v", c.name, err)
		}
	}
	if len(Presets()) != len(cases) {
		t.Fatalf("expected %d presets, got %d", len(cases), len(Presets()))
	}
}

func TestParsePresetAliases(t *testing.T) {
	for _, s := range []string{"max", "MAX_THROUGHPUT", " max-throughput "} {
		if p, err := ParsePreset(s); err != nil || p != MaxThroughput {
			t.Fatalf("ParsePreset(%q): expected max-throughput, got %v, %v", s, p, err)
		}
	}
	if _, err := ParsePreset("turbo"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if k, err := ParseKind("dma"); err != nil || k != KindAccelerated {
		t.Fatalf("expected accelerated, got %v, %v", k, err)
	}
	if _, err := ParseKind("spi"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	mutate := []func(*Config){
		func(c *Config) { c.Kind = 7 },
		func(c *Config) { c.BusClock = 100 * physic.MegaHertz },
		func(c *Config) { c.ChunkLines = 0 },
		func(c *Config) { c.ChunkLines = 171 },
		func(c *Config) { c.QueueDepth = 0 },
		func(c *Config) { c.Timeout = 0 },
		func(c *Config) { c.Policy = 9 },
		func(c *Config) { c.Panel.Width = 0 },
		func(c *Config) { c.Dim.Step = 0 },
	}
	for i, m := range mutate {
		cfg := PresetConfig(Balanced)
		m(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestMemoryNeeded(t *testing.T) {
	cfg := PresetConfig(Conservative)
	if got := cfg.MemoryNeeded(); got != 108800+8*32000 {
		t.Fatalf("expected %d, got %d", 108800+8*32000, got)
	}
	cfg = PresetConfig(Balanced)
	if got := cfg.MemoryNeeded(); got != 217600+10*64000 {
		t.Fatalf("expected %d, got %d", 217600+10*64000, got)
	}
	cfg.Kind = KindBitBang
	if got := cfg.MemoryNeeded(); got != 108800+64000 {
		t.Fatalf("expected %d for bit-bang, got %d", 108800+64000, got)
	}
}

func TestSelect(t *testing.T) {
	cases := []struct {
		name   string
		mem    hal.Memory
		preset Preset
		db     bool
		region transfer.Region
		err    error
	}{
		{"fast", hal.Memory{Fast: 2 << 20}, Balanced, true, transfer.FastMemory, nil},
		{"bulk", hal.Memory{Fast: 512 << 10, Bulk: 8 << 20}, Performance, true, transfer.BulkMemory, nil},
		{"drop double buffer", hal.Memory{Bulk: 800000}, Balanced, false, transfer.BulkMemory, nil},
		{"single in fast", hal.Memory{Fast: 400000}, Conservative, false, transfer.FastMemory, nil},
		{"too small", hal.Memory{Fast: 300000}, Conservative, false, 0, ErrInsufficientMemory},
		{"too small for anything", hal.Memory{Fast: 200000}, Balanced, false, 0, ErrInsufficientMemory},
		{"unknown preset", hal.Memory{Fast: 8 << 20}, Preset(9), false, 0, ErrInvalidConfig},
	}
	for _, c := range cases {
		cfg, err := Select(&hal.Board{Mem: c.mem}, c.preset)
		if c.err != nil {
			if !errors.Is(err, c.err) {
				t.Fatalf("%s: expected %v, got %v", c.name, c.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: Select: %v", c.name, err)
		}
		if cfg.DoubleBuffer != c.db || cfg.Region != c.region {
			t.Fatalf("%s: expected double buffer %v in %s, got %v in %s", c.name, c.db, c.region, cfg.DoubleBuffer, cfg.Region)
		}
	}
}

type limitEngine struct {
	hal.BlockTransfer
	max int
}

func (e limitEngine) MaxTransfer() int { return e.max }

func TestSelectSizesStagingByEngineLimit(t *testing.T) {
	mem := hal.Memory{Fast: 600000}
	if _, err := Select(&hal.Board{Mem: mem}, Balanced); !errors.Is(err, ErrInsufficientMemory) {
		t.Fatalf("expected ErrInsufficientMemory without an engine limit, got %v", err)
	}
	cfg, err := Select(&hal.Board{Mem: mem, Engine: limitEngine{max: 32 << 10}}, Balanced)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !cfg.DoubleBuffer || cfg.Region != transfer.FastMemory {
		t.Fatalf("expected double buffer in fast memory, got %v in %s", cfg.DoubleBuffer, cfg.Region)
	}
	if got := cfg.MemoryNeeded(); got != 217600+10*32768 {
		t.Fatalf("expected %d, got %d", 217600+10*32768, got)
	}
}

func TestBenchmarkReport(t *testing.T) {
	r := BenchmarkResult{Backend: "x", FullFrame: 25 * time.Millisecond, MaxFPS: 40}
	lines := r.Report()
	if len(lines) != 7 || lines[4] != "bench x: full frame 25.00ms" || lines[6] != "bench x: max 40.0 fps" {
		t.Fatalf("unexpected report %q", lines)
	}
}

func TestMetricsReport(t *testing.T) {
	m := Metrics{Flushes: 4, FlushErrors: 1, PixelsSent: 4000, DrawCalls: 10}
	lines := m.Report("bb")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines without timing, got %d", len(lines))
	}
	if lines[0] != "bb: 4 flushes (1 failed), 1000 px/flush, 2.5 draws/flush" {
		t.Fatalf("unexpected summary %q", lines[0])
	}
	m.FlushTime = 2 * time.Millisecond
	lines = m.Report("bb")
	if len(lines) != 4 || lines[3] != "bb: 2000 px/ms" {
		t.Fatalf("expected a throughput line, got %q", lines)
	}
}

// Command lcdbench runs the benchmark battery against simulated boards and
// prints one report per backend configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/bmp"

	"lcdpipe/backend"
	"lcdpipe/canvas"
	"lcdpipe/hal"
	"lcdpipe/hal/sim"
	"lcdpipe/pixel"
)

func main() {
	var (
		kind     = flag.String("backend", "accelerated", "bitbang|accelerated.")
		preset   = flag.String("preset", "all", "Preset name, or all.")
		snapshot = flag.String("snapshot", "", "Write the final panel contents of the last run to this .bmp file.")
		fastMem  = flag.Int("fast-mem", 512<<10, "Simulated fast memory in bytes.")
		bulkMem  = flag.Int("bulk-mem", 8<<20, "Simulated bulk memory in bytes.")
		throttle = flag.Bool("throttle", true, "Pace the simulated engine at the bus clock.")
	)
	flag.Parse()

	k, err := backend.ParseKind(*kind)
	if err != nil {
		fatalf("%v", err)
	}
	presets := backend.Presets()
	if !strings.EqualFold(*preset, "all") {
		p, err := backend.ParsePreset(*preset)
		if err != nil {
			fatalf("%v", err)
		}
		presets = []backend.Preset{p}
	}

	log := hal.NewLogger(os.Stdout)
	mem := hal.Memory{Fast: *fastMem, Bulk: *bulkMem}
	var last *sim.Board
	for _, p := range presets {
		board, err := bench(k, p, mem, *throttle, log)
		if err != nil {
			fatalf("%s: %v", p, err)
		}
		if last != nil {
			last.Close()
		}
		last = board
	}
	if last == nil {
		return
	}
	defer last.Close()
	if *snapshot != "" {
		if err := writeSnapshot(*snapshot, last.Panel); err != nil {
			fatalf("snapshot: %v", err)
		}
	}
}

func bench(k backend.Kind, p backend.Preset, mem hal.Memory, throttle bool, log hal.Logger) (*sim.Board, error) {
	board := sim.NewBoard(sim.BoardConfig{
		Panel:  sim.DefaultPanelConfig(hal.SystemClock{}),
		Engine: sim.EngineConfig{Async: true, Throttle: throttle},
		Memory: mem,
		Log:    log,
	})
	cfg, err := backend.Select(board, p)
	if err != nil {
		board.Close()
		return nil, err
	}
	cfg.Kind = k
	b, err := backend.New(cfg, board)
	if err != nil {
		board.Close()
		return nil, err
	}
	defer b.Close()

	res, err := backend.RunBenchmark(context.Background(), b, board.Clock())
	if err != nil {
		board.Close()
		return nil, err
	}
	for _, line := range res.Report() {
		log.WriteLineString(line)
	}
	for _, line := range b.Metrics().Report(b.Name()) {
		log.WriteLineString(line)
	}
	return board, nil
}

func writeSnapshot(path string, p *sim.Panel) error {
	w, h := p.Size()
	px := make([]pixel.Color, w*h)
	p.Snapshot(px)
	cv := canvas.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cv.Set(x, y, px[y*w+x])
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, cv); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s (%dx%d)\n", path, w, h)
	return nil
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

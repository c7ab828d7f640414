//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"lcdpipe/app"
	"lcdpipe/backend"
	"lcdpipe/hal"
	"lcdpipe/hal/sim"
)

func main() {
	var cfg hal.HeadlessConfig
	var (
		kind     = flag.String("backend", "accelerated", "Backend: bitbang or accelerated.")
		preset   = flag.String("preset", "balanced", "Performance preset.")
		bench    = flag.Bool("bench", false, "Run the benchmark before the dashboard.")
		gpio     = flag.String("gpio", "", "Drive a real panel over host GPIO: D0..D7,WR,DC,CS[,RST[,BL]]. Implies -headless.")
		input    = flag.String("input", "", "Input device name substring that counts as activity (linux).")
		fastMem  = flag.Int("fast-mem", 512<<10, "Simulated fast memory in bytes.")
		bulkMem  = flag.Int("bulk-mem", 8<<20, "Simulated bulk memory in bytes.")
		throttle = flag.Bool("throttle", true, "Pace the simulated engine at the bus clock.")
	)
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 30, "Frame rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N frames in headless mode (0 = run forever).")
	flag.Parse()

	log := hal.NewLogger(os.Stdout)

	k, err := backend.ParseKind(*kind)
	if err != nil {
		fatalf("%v", err)
	}
	p, err := backend.ParsePreset(*preset)
	if err != nil {
		fatalf("%v", err)
	}

	var (
		h     hal.HAL
		board *sim.Board
	)
	if *gpio != "" {
		pc, err := hal.ParsePinSpec(*gpio)
		if err != nil {
			fatalf("%v", err)
		}
		b, err := hal.OpenPeriph(pc, log)
		if err != nil {
			fatalf("%v", err)
		}
		h = b
		k = backend.KindBitBang
		cfg.Enabled = true
	} else {
		board = sim.NewBoard(sim.BoardConfig{
			Panel:  sim.DefaultPanelConfig(hal.SystemClock{}),
			Engine: sim.EngineConfig{Async: true, Throttle: *throttle},
			Memory: hal.Memory{Fast: *fastMem, Bulk: *bulkMem},
			Log:    log,
		})
		defer board.Close()
		h = board
	}

	bcfg, err := backend.Select(h, p)
	if err != nil {
		fatalf("%v", err)
	}
	bcfg.Kind = k
	b, err := backend.New(bcfg, h)
	if err != nil {
		fatalf("%v", err)
	}
	defer b.Close()

	a, err := app.New(b, h, app.Config{Bench: *bench})
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *input != "" {
		go func() {
			if err := hal.WatchInput(ctx, *input, a.Poke, log); err != nil && !errors.Is(err, context.Canceled) {
				log.WriteLineString(fmt.Sprintf("input: %v", err))
			}
		}()
	}

	if cfg.Enabled {
		cfg.Log = log
		err = hal.RunHeadless(ctx, a.Step, cfg)
	} else {
		err = hal.RunWindow(board.Panel, hal.WindowConfig{Title: "lcdpipe", Step: a.Step, OnInput: a.Poke})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lcdpipe: "+format+"\n", args...)
	os.Exit(1)
}

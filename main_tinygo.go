//go:build tinygo

package main

import (
	"context"
	"fmt"

	"lcdpipe/app"
	"lcdpipe/backend"
	"lcdpipe/hal"
)

func main() {
	h := hal.New()
	log := h.Logger()

	cfg, err := backend.Select(h, backend.Balanced)
	if err != nil {
		halt(log, err)
	}
	if h.Transfer() == nil {
		cfg.Kind = backend.KindBitBang
	}
	b, err := backend.New(cfg, h)
	if err != nil {
		halt(log, err)
	}
	a, err := app.New(b, h, app.Config{})
	if err != nil {
		halt(log, err)
	}
	halt(log, a.Run(context.Background(), 30))
}

func halt(log hal.Logger, err error) {
	log.WriteLineString(fmt.Sprintf("lcdpipe: %v", err))
	select {}
}

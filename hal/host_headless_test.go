//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	n := 0
	err := RunHeadless(context.Background(), func() error {
		n++
		return nil
	}, HeadlessConfig{Enabled: true, Hz: 1000, Ticks: 5})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 steps, got %d", n)
	}
}

func TestRunHeadlessStepError(t *testing.T) {
	errStop := errors.New("stop")
	err := RunHeadless(context.Background(), func() error { return errStop }, HeadlessConfig{Hz: 1000})
	if !errors.Is(err, errStop) {
		t.Fatalf("expected step error, got %v", err)
	}
}

func TestRunHeadlessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := RunHeadless(ctx, nil, HeadlessConfig{Hz: 10}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type captureLog struct{ lines []string }

func (c *captureLog) WriteLineString(s string) { c.lines = append(c.lines, s) }
func (c *captureLog) WriteLineBytes(b []byte)  { c.lines = append(c.lines, string(b)) }

func TestRunHeadlessSummary(t *testing.T) {
	log := &captureLog{}
	err := RunHeadless(context.Background(), func() error { return nil }, HeadlessConfig{Hz: 1000, Ticks: 3, Log: log})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if len(log.lines) != 1 || !strings.HasPrefix(log.lines[0], "headless: 3 frames") {
		t.Fatalf("expected a 3 frame summary, got %q", log.lines)
	}
}

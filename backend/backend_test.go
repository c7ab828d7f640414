package backend_test

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"lcdpipe/backend"
	"lcdpipe/canvas"
	"lcdpipe/hal"
	"lcdpipe/hal/sim"
	"lcdpipe/pixel"
	"lcdpipe/transfer"
)

var ctx = context.Background()

type rig struct {
	clock *hal.FakeClock
	board *sim.Board
	b     backend.Backend
}

func newRig(t *testing.T, cfg backend.Config, async bool) *rig {
	t.Helper()
	clock := hal.NewFakeClock(time.Unix(1000, 0))
	board := sim.NewBoard(sim.BoardConfig{
		Panel:  sim.DefaultPanelConfig(clock),
		Engine: sim.EngineConfig{MaxTransfer: 32 << 10, Async: async},
	})
	t.Cleanup(func() { board.Close() })
	cfg.Timeout = time.Hour
	cfg.Panel.ClearMemory = false
	b, err := backend.New(cfg, board)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return &rig{clock: clock, board: board, b: b}
}

func bitbang() backend.Config {
	cfg := backend.PresetConfig(backend.Conservative)
	cfg.Kind = backend.KindBitBang
	return cfg
}

func accelerated(p backend.Preset, policy backend.FlushPolicy) backend.Config {
	cfg := backend.PresetConfig(p)
	cfg.Policy = policy
	return cfg
}

func scene(t *testing.T, b backend.Backend) {
	t.Helper()
	big := canvas.TextStyle{Color: pixel.White, Background: pixel.SurfaceLight, Opaque: true, Scale: 2}
	small := canvas.TextStyle{Color: pixel.TextSecondary, Scale: 1}

	b.Clear(pixel.SurfaceDark)
	b.FillRect(10, 10, 100, 40, pixel.PrimaryBlue)
	b.DrawRect(5, 5, 310, 160, pixel.Border)
	b.DrawLine(0, 0, 319, 169, pixel.AccentOrange)
	b.DrawText(20, 60, "HELLO 123", big)
	b.DrawTextCentered(120, "CENTERED", small)
	b.FillCircle(250, 100, 30, pixel.PrimaryGreen)
	b.DrawCircle(250, 100, 34, pixel.White)
	b.DrawProgressBar(20, 140, 200, 12, 65, pixel.PrimaryGreen, pixel.Black, pixel.Border)
	b.DrawPixel(319, 169, pixel.Red)
	b.DrawPixel(-1, 5, pixel.Red)
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	b.FillRect(200, 20, 50, 50, pixel.PrimaryPurple)
	b.DrawChar(300, 150, 'Q', big)
	b.DrawLine(300, 0, 300, 169, pixel.Yellow)
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if a, ok := b.(*backend.Accelerated); ok {
		for done := false; !done; {
			var err error
			if done, err = a.Poll(ctx); err != nil {
				t.Fatalf("Poll: %v", err)
			}
		}
	}
}

func TestBackendsProduceIdenticalPanels(t *testing.T) {
	ref := newRig(t, bitbang(), false)
	scene(t, ref.b)

	variants := map[string]*rig{
		"accelerated block":       newRig(t, accelerated(backend.Balanced, backend.Block), true),
		"accelerated poll":        newRig(t, accelerated(backend.MaxThroughput, backend.Poll), true),
		"accelerated single sync": newRig(t, accelerated(backend.Conservative, backend.Block), false),
	}
	for name, r := range variants {
		scene(t, r.b)
		for y := 0; y < 170; y++ {
			for x := 0; x < 320; x++ {
				if got, want := r.board.Panel.Pixel(x, y), ref.board.Panel.Pixel(x, y); got != want {
					t.Fatalf("%s: pixel (%d,%d): expected %#04x, got %#04x", name, x, y, want, got)
				}
			}
		}
		if v := r.board.Panel.Violations(); len(v) != 0 {
			t.Fatalf("%s: protocol violations %v", name, v)
		}
	}
	if ref.board.Panel.Pixel(319, 169) != pixel.Red || ref.board.Panel.Pixel(15, 15) != pixel.PrimaryBlue {
		t.Fatal("expected the scene on the reference panel")
	}
}

func TestClearReadBack(t *testing.T) {
	for name, r := range map[string]*rig{
		"bitbang":     newRig(t, bitbang(), false),
		"accelerated": newRig(t, accelerated(backend.Performance, backend.Block), true),
	} {
		r.b.Clear(pixel.PrimaryGreen)
		if err := r.b.Flush(ctx); err != nil {
			t.Fatalf("%s: Flush: %v", name, err)
		}
		n := 0
		for y := 0; y < r.b.Height(); y++ {
			for x := 0; x < r.b.Width(); x++ {
				if r.board.Panel.Pixel(x, y) == pixel.PrimaryGreen {
					n++
				}
			}
		}
		if n != 54400 {
			t.Fatalf("%s: expected 54400 cleared pixels, got %d", name, n)
		}
	}
}

func TestDirtyFlushSendsOnlyChanges(t *testing.T) {
	r := newRig(t, bitbang(), false)
	r.b.Clear(pixel.Black)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	sent := r.b.Metrics().PixelsSent
	r.b.DrawPixel(5, 5, pixel.White)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := r.b.Metrics().PixelsSent - sent; got != 1 {
		t.Fatalf("expected one pixel sent, got %d", got)
	}
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := r.b.Metrics().PixelsSent - sent; got != 1 {
		t.Fatalf("expected an idle flush to send nothing, got %d", got)
	}
	if r.board.Panel.Pixel(5, 5) != pixel.White {
		t.Fatal("expected the pixel on the panel")
	}
}

func TestFullFlushWithoutDirtyTracking(t *testing.T) {
	cfg := accelerated(backend.Balanced, backend.Block)
	cfg.DirtyTracking = false
	r := newRig(t, cfg, true)
	r.b.DrawPixel(1, 1, pixel.Blue)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := r.b.Metrics().PixelsSent; got != 54400 {
		t.Fatalf("expected a whole frame, got %d pixels", got)
	}
}

func TestFlushRegion(t *testing.T) {
	r := newRig(t, accelerated(backend.Balanced, backend.Block), true)
	r.b.FillRect(0, 0, 10, 10, pixel.Red)
	r.b.FillRect(100, 100, 10, 10, pixel.Blue)
	if err := r.b.FlushRegion(ctx, image.Rect(95, 95, 400, 400)); err != nil {
		t.Fatalf("FlushRegion: %v", err)
	}
	if r.board.Panel.Pixel(105, 105) != pixel.Blue {
		t.Fatal("expected the region on the panel")
	}
	if r.board.Panel.Pixel(5, 5) != pixel.Black {
		t.Fatal("expected pixels outside the region untouched")
	}
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if r.board.Panel.Pixel(5, 5) != pixel.Red || r.board.Panel.Pixel(105, 105) != pixel.Blue {
		t.Fatal("expected the remaining changes after Flush")
	}
	if err := r.b.FlushRegion(ctx, image.Rect(400, 400, 500, 500)); err != nil {
		t.Fatalf("expected an off-screen region to be a no-op, got %v", err)
	}
}

func TestFailedFlushRepaintsNextFrame(t *testing.T) {
	r := newRig(t, accelerated(backend.Balanced, backend.Block), true)
	r.b.Clear(pixel.Black)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r.b.FillRect(0, 0, 320, 100, pixel.Cyan)
	r.board.Engine.FailNext(1)
	if err := r.b.Flush(ctx); !errors.Is(err, transfer.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	r.b.DrawPixel(300, 150, pixel.Red)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("expected the next frame to proceed, got %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {319, 99}, {160, 50}} {
		if got := r.board.Panel.Pixel(p.X, p.Y); got != pixel.Cyan {
			t.Fatalf("pixel %v: expected the dropped area repainted, got %#04x", p, got)
		}
	}
	m := r.b.Metrics()
	if m.FlushErrors != 1 || m.Transfer.Failures != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestPolledFailureDoesNotDropNextFrame(t *testing.T) {
	r := newRig(t, accelerated(backend.MaxThroughput, backend.Poll), true)
	a := r.b.(*backend.Accelerated)
	settle := func() {
		t.Helper()
		for done := false; !done; {
			var err error
			if done, err = a.Poll(ctx); err != nil {
				t.Fatalf("Poll: %v", err)
			}
		}
	}
	r.b.Clear(pixel.Black)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	settle()

	r.b.FillRect(0, 0, 320, 100, pixel.Cyan)
	r.board.Engine.FailNext(1)
	failed := r.b.Flush(ctx)
	r.b.DrawPixel(300, 150, pixel.Red)
	next := r.b.Flush(ctx)
	if !errors.Is(errors.Join(failed, next), transfer.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v and %v", failed, next)
	}
	settle()

	if got := r.board.Panel.Pixel(300, 150); got != pixel.Red {
		t.Fatalf("expected the frame after the failure sent, got %#04x", got)
	}
	for _, p := range []image.Point{{0, 0}, {319, 99}, {160, 50}} {
		if got := r.board.Panel.Pixel(p.X, p.Y); got != pixel.Cyan {
			t.Fatalf("pixel %v: expected the dropped area repainted, got %#04x", p, got)
		}
	}
	if m := r.b.Metrics(); m.FlushErrors != 1 {
		t.Fatalf("expected 1 flush error, got %d", m.FlushErrors)
	}
}

func TestFlushTimeout(t *testing.T) {
	cfg := accelerated(backend.Balanced, backend.Block)
	clock := hal.NewFakeClock(time.Unix(0, 0))
	board := sim.NewBoard(sim.BoardConfig{Panel: sim.DefaultPanelConfig(clock), Engine: sim.EngineConfig{Async: true}})
	defer board.Close()
	cfg.Panel.ClearMemory = false
	cfg.Timeout = 50 * time.Millisecond
	b, err := backend.New(cfg, board)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	board.Engine.Stall(true)
	b.Clear(pixel.White)
	if err := b.Flush(ctx); !errors.Is(err, transfer.ErrTransferTimeout) {
		t.Fatalf("expected ErrTransferTimeout, got %v", err)
	}
	board.Engine.Stall(false)
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if board.Panel.Pixel(0, 0) != pixel.White {
		t.Fatal("expected the frame after recovery")
	}
}

func TestAutoDimAndActivity(t *testing.T) {
	r := newRig(t, accelerated(backend.Balanced, backend.Block), true)
	if r.board.Light.Level() != 255 {
		t.Fatalf("expected full brightness after init, got %d", r.board.Light.Level())
	}
	r.clock.Advance(299 * time.Second)
	if err := r.b.UpdateAutoDim(); err != nil {
		t.Fatalf("UpdateAutoDim: %v", err)
	}
	if r.board.Light.Level() != 255 {
		t.Fatal("expected no dimming before the timeout")
	}
	r.clock.Advance(2 * time.Second)
	if err := r.b.UpdateAutoDim(); err != nil {
		t.Fatalf("UpdateAutoDim: %v", err)
	}
	dimmed := r.board.Light.Level()
	if dimmed >= 255 {
		t.Fatalf("expected reduced brightness, got %d", dimmed)
	}
	r.b.UpdateAutoDim()
	if r.board.Light.Level() >= dimmed {
		t.Fatal("expected brightness to keep stepping down")
	}

	r.b.DrawPixel(1, 1, pixel.White)
	if r.board.Light.Level() != 255 {
		t.Fatalf("expected a draw to restore full brightness, got %d", r.board.Light.Level())
	}
	if err := r.b.UpdateAutoDim(); err != nil || r.board.Light.Level() != 255 {
		t.Fatal("expected the next dim check to keep full brightness")
	}

	r.clock.Advance(time.Hour)
	r.b.UpdateAutoDim()
	r.b.ResetActivityTimer()
	if r.board.Light.Level() != 255 {
		t.Fatal("expected ResetActivityTimer to restore full brightness")
	}
}

func TestEnsureDisplayOn(t *testing.T) {
	r := newRig(t, bitbang(), false)
	if err := r.b.Sleep(); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if st := r.board.Panel.Status(); !st.Asleep || st.DisplayOn {
		t.Fatalf("expected the panel asleep, got %+v", st)
	}
	if err := r.b.EnsureDisplayOn(); err != nil {
		t.Fatalf("EnsureDisplayOn: %v", err)
	}
	if st := r.board.Panel.Status(); st.Asleep || !st.DisplayOn {
		t.Fatalf("expected the panel awake, got %+v", st)
	}
	r.board.Panel.ResetTrace()
	if err := r.b.EnsureDisplayOn(); err != nil {
		t.Fatalf("EnsureDisplayOn: %v", err)
	}
	if n := len(r.board.Panel.Commands()); n != 0 {
		t.Fatalf("expected no commands when already on, got %d", n)
	}
	if v := r.board.Panel.Violations(); len(v) != 0 {
		t.Fatalf("protocol violations %v", v)
	}
}

// tickClock advances by a millisecond every time it is read.
type tickClock struct{ now time.Time }

func (c *tickClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(time.Millisecond)
	return t
}

func (c *tickClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func TestFPSOnlyAfterMeasurement(t *testing.T) {
	r := newRig(t, accelerated(backend.Balanced, backend.Block), false)
	if _, ok := r.b.FPS(); ok {
		t.Fatal("expected no FPS before any measurement")
	}
	r.b.Clear(pixel.Black)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, ok := r.b.FPS(); ok {
		t.Fatal("expected no FPS from a flush that took no measurable time")
	}

	res, err := backend.RunBenchmark(ctx, r.b, &tickClock{now: time.Unix(0, 0)})
	if err != nil {
		t.Fatalf("RunBenchmark: %v", err)
	}
	if res.FullFrame != 500*time.Microsecond || res.MaxFPS != 2000 {
		t.Fatalf("unexpected result %+v", res)
	}
	if fps, ok := r.b.FPS(); !ok || fps != 2000 {
		t.Fatalf("expected 2000 fps from the benchmark, got %v, %v", fps, ok)
	}
}

func TestBenchmarkBattery(t *testing.T) {
	r := newRig(t, accelerated(backend.Performance, backend.Block), true)
	res, err := backend.RunBenchmark(ctx, r.b, r.clock)
	if err != nil {
		t.Fatalf("RunBenchmark: %v", err)
	}
	if res.Backend != "accelerated/performance" {
		t.Fatalf("unexpected backend name %q", res.Backend)
	}
	p := r.board.Panel
	if p.Pixel(100, 50) != pixel.White || p.Pixel(219, 117) != pixel.White || p.Pixel(150, 80) != pixel.Black {
		t.Fatal("expected the partial-update rectangle outline last on screen")
	}
	if m := r.b.Metrics(); m.Flushes < 10 || m.FlushErrors != 0 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestNewErrors(t *testing.T) {
	clock := hal.NewFakeClock(time.Unix(0, 0))
	bare := &hal.Board{Clk: clock}
	if _, err := backend.New(bitbang(), bare); !errors.Is(err, backend.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported without pins, got %v", err)
	}
	if _, err := backend.New(accelerated(backend.Balanced, backend.Block), bare); !errors.Is(err, backend.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported without an engine, got %v", err)
	}
	cfg := accelerated(backend.Balanced, backend.Block)
	cfg.QueueDepth = 0
	if _, err := backend.New(cfg, bare); !errors.Is(err, backend.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := backend.New(accelerated(backend.Balanced, backend.Block), nil); !errors.Is(err, backend.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig without a board, got %v", err)
	}
}

func TestSetClockReachesEngine(t *testing.T) {
	r := newRig(t, accelerated(backend.MaxThroughput, backend.Block), true)
	if got := r.board.Engine.Clock(); got != backend.PresetConfig(backend.MaxThroughput).BusClock {
		t.Fatalf("expected the preset clock on the engine, got %v", got)
	}
	if r.b.Kind() != backend.KindAccelerated || r.b.Name() != "accelerated/max-throughput" {
		t.Fatalf("unexpected identity %s %s", r.b.Kind(), r.b.Name())
	}
}

func TestClosedBackend(t *testing.T) {
	r := newRig(t, accelerated(backend.Balanced, backend.Poll), true)
	r.b.Clear(pixel.White)
	if err := r.b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := r.b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r.board.Panel.Pixel(10, 10) != pixel.White {
		t.Fatal("expected Close to finish the frame in flight")
	}
	if err := r.b.Flush(ctx); !errors.Is(err, backend.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

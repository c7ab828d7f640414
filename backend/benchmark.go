package backend

import (
	"context"
	"fmt"
	"time"

	"lcdpipe/canvas"
	"lcdpipe/hal"
	"lcdpipe/pixel"
)

const benchText = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// BenchmarkResult holds the timings of one battery run.
type BenchmarkResult struct {
	Backend   string
	Clear     time.Duration
	Pixels    time.Duration
	Rects     time.Duration
	Text      time.Duration
	FullFrame time.Duration
	Partial   time.Duration
	// MaxFPS is the full-frame rate the bus could sustain, or 0 when the
	// full-frame time was too short to measure.
	MaxFPS float64
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Report formats r as log lines.
func (r BenchmarkResult) Report() []string {
	return []string{
		fmt.Sprintf("bench %s: clear %.2fms", r.Backend, ms(r.Clear)),
		fmt.Sprintf("bench %s: 1000 pixels %.2fms", r.Backend, ms(r.Pixels)),
		fmt.Sprintf("bench %s: 100 rects %.2fms", r.Backend, ms(r.Rects)),
		fmt.Sprintf("bench %s: text %.2fms", r.Backend, ms(r.Text)),
		fmt.Sprintf("bench %s: full frame %.2fms", r.Backend, ms(r.FullFrame)),
		fmt.Sprintf("bench %s: partial %.2fms", r.Backend, ms(r.Partial)),
		fmt.Sprintf("bench %s: max %.1f fps", r.Backend, r.MaxFPS),
	}
}

// RunBenchmark drives b through a fixed battery of draws and flushes. It
// overwrites the screen and must not run alongside real drawing. A
// measurable full-frame time becomes the backend's FPS.
func RunBenchmark(ctx context.Context, b Backend, clock hal.Clock) (BenchmarkResult, error) {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	res := BenchmarkResult{Backend: b.Name()}
	w, h := b.Width(), b.Height()
	flush := func() error { return b.Flush(ctx) }
	timed := func(dst *time.Duration, steps ...func() error) error {
		start := clock.Now()
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		*dst = clock.Now().Sub(start)
		return nil
	}
	blank := func() error {
		b.Clear(pixel.Black)
		return flush()
	}

	err := timed(&res.Clear, blank)
	if err == nil {
		err = timed(&res.Pixels, func() error {
			for i := 0; i < 1000; i++ {
				c := pixel.White
				if i%2 != 0 {
					c = pixel.PrimaryRed
				}
				b.DrawPixel((i*37)%w, (i*23)%h, c)
			}
			return nil
		}, flush)
	}
	if err == nil {
		err = blank()
	}
	if err == nil {
		colors := [...]pixel.Color{pixel.PrimaryRed, pixel.White, pixel.TextSecondary}
		err = timed(&res.Rects, func() error {
			for i := 0; i < 100; i++ {
				b.DrawRect((i*13)%(w-40), (i*11)%(h-40), 30, 20, colors[i%3])
			}
			return nil
		}, flush)
	}
	if err == nil {
		err = blank()
	}
	if err == nil {
		st := canvas.TextStyle{Color: pixel.White, Background: pixel.Black, Opaque: true, Scale: 1}
		err = timed(&res.Text, func() error {
			for i := 0; i < 3; i++ {
				b.DrawText(10, 20+i*20, benchText, st)
			}
			return nil
		}, flush)
	}
	if err == nil {
		err = timed(&res.FullFrame, func() error {
			b.Clear(pixel.PrimaryRed)
			return flush()
		}, func() error {
			b.Clear(pixel.White)
			return flush()
		})
		res.FullFrame /= 2
	}
	if err == nil {
		err = blank()
	}
	if err == nil {
		err = timed(&res.Partial, func() error {
			b.DrawRect(100, 50, 120, 68, pixel.White)
			return nil
		}, flush)
	}
	if err != nil {
		return res, fmt.Errorf("backend: benchmark: %w", err)
	}
	if res.FullFrame > 0 {
		res.MaxFPS = float64(time.Second) / float64(res.FullFrame)
		b.base().setFPS(res.MaxFPS)
	}
	return res, nil
}

//go:build linux && !tinygo

package hal

import (
	"context"
	"fmt"
	"strings"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// WatchInput reports key presses on the first input device whose name
// contains match (all devices with EV_KEY when match is empty). It blocks
// until ctx ends.
func WatchInput(ctx context.Context, match string, onPress func(), log Logger) error {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return fmt.Errorf("input: list devices: %w", err)
	}

	var devPath string
	for _, ip := range paths {
		if match == "" || strings.Contains(ip.Name, match) {
			devPath = ip.Path
			break
		}
	}
	if devPath == "" {
		return fmt.Errorf("input: no device matching %q", match)
	}

	dev, err := evdev.Open(devPath)
	if err != nil {
		return fmt.Errorf("input: open %s: %w", devPath, err)
	}
	name, _ := dev.Name()
	if log != nil {
		log.WriteLineString(fmt.Sprintf("input: using %s (%s)", devPath, name))
	}

	go func() {
		<-ctx.Done()
		dev.Close()
	}()

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if ev.Type == evdev.EV_KEY && ev.Value == 1 && onPress != nil {
			onPress()
		}
	}
}

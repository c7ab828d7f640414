//go:build !linux && !tinygo

package hal

import (
	"context"
	"errors"
)

func WatchInput(_ context.Context, _ string, _ func(), _ Logger) error {
	return errors.New("input: evdev is only supported on linux")
}

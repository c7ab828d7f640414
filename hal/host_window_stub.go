//go:build !tinygo && !cgo

package hal

import "errors"

// WindowConfig controls the desktop preview.
type WindowConfig struct {
	Title   string
	Scale   int
	Step    func() error
	OnInput func()
}

func RunWindow(_ Screen, _ WindowConfig) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}

//go:build !linux && !tinygo

package hal

import "errors"

func OpenPeriph(_ PeriphConfig, _ Logger) (*Board, error) {
	return nil, errors.New("periph: host GPIO is only supported on linux")
}

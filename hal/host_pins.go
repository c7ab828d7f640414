//go:build !tinygo

package hal

import (
	"fmt"
	"strings"
)

// PeriphConfig names the host GPIO lines wired to the panel, as known to
// the periph.io registry (for example "GPIO17").
type PeriphConfig struct {
	Data      [8]string
	WR        string
	DC        string
	CS        string
	RST       string
	Backlight string
}

// ParsePinSpec reads "D0,D1,D2,D3,D4,D5,D6,D7,WR,DC,CS[,RST[,BL]]".
func ParsePinSpec(spec string) (PeriphConfig, error) {
	var cfg PeriphConfig
	fields := strings.Split(spec, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 11 || len(fields) > 13 {
		return cfg, fmt.Errorf("gpio: pin spec %q: expected 11 to 13 names, got %d", spec, len(fields))
	}
	for i, f := range fields {
		if f == "" && i < 11 {
			return cfg, fmt.Errorf("gpio: pin spec %q: empty name at position %d", spec, i)
		}
	}
	copy(cfg.Data[:], fields[:8])
	cfg.WR, cfg.DC, cfg.CS = fields[8], fields[9], fields[10]
	if len(fields) > 11 {
		cfg.RST = fields[11]
	}
	if len(fields) > 12 {
		cfg.Backlight = fields[12]
	}
	return cfg, nil
}

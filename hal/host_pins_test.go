//go:build !tinygo

package hal

import "testing"

func TestParsePinSpec(t *testing.T) {
	cfg, err := ParsePinSpec("GPIO2, GPIO3,GPIO4,GPIO5,GPIO6,GPIO7,GPIO8,GPIO9,GPIO10,GPIO11,GPIO12,GPIO13")
	if err != nil {
		t.Fatalf("ParsePinSpec: %v", err)
	}
	if cfg.Data[1] != "GPIO3" || cfg.WR != "GPIO10" || cfg.CS != "GPIO12" || cfg.RST != "GPIO13" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Backlight != "" {
		t.Fatalf("expected no backlight, got %q", cfg.Backlight)
	}
}

func TestParsePinSpecRejects(t *testing.T) {
	for _, spec := range []string{"", "A,B,C", "A,B,C,D,E,F,G,H,,J,K"} {
		if _, err := ParsePinSpec(spec); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}

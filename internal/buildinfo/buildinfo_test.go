package buildinfo

import "testing"

func TestLine(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "dev", "unknown", "unknown"
	if got := Line(); got != "dev" {
		t.Fatalf("expected dev, got %q", got)
	}
	Commit = "abc1234"
	if got := Line(); got != "abc1234" {
		t.Fatalf("expected commit, got %q", got)
	}
	Version, Date = "v0.3.0", "2026-10-01"
	if got := Line(); got != "v0.3.0 2026-10-01" {
		t.Fatalf("expected version and date, got %q", got)
	}
}

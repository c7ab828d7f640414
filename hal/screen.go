package hal

import "lcdpipe/pixel"

// Screen exposes what a panel currently shows, for host previews.
type Screen interface {
	Size() (w, h int)
	// Snapshot copies the visible area row-major into dst, which holds
	// at least w*h pixels.
	Snapshot(dst []pixel.Color)
}

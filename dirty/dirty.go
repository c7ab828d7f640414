// Package dirty tracks the canvas areas changed since the last flush.
package dirty

import "image"

const (
	// MaxRects is how many separate rectangles are kept.
	MaxRects = 16
	// MergeThreshold collapses the set into its bounding box once reached.
	MergeThreshold = 10
	// Adjacency is the gap in pixels below which rectangles are merged.
	Adjacency = 8
)

// Stats count tracker activity since construction.
type Stats struct {
	Added   uint64
	Merges  uint64
	Flushes uint64
}

// Tracker keeps a small set of rectangles, merging neighbours so a flush
// sends a few larger writes rather than many small ones. Not safe for
// concurrent use.
type Tracker struct {
	bounds image.Rectangle
	rects  [MaxRects]image.Rectangle
	n      int
	stats  Stats
}

// New tracks changes inside bounds. Rectangles are clipped to it.
func New(bounds image.Rectangle) *Tracker {
	return &Tracker{bounds: bounds}
}

// Add marks r as changed.
func (t *Tracker) Add(r image.Rectangle) {
	r = r.Intersect(t.bounds)
	if r.Empty() {
		return
	}
	t.stats.Added++
	for i := 0; i < t.n; i++ {
		if near(t.rects[i], r) {
			t.rects[i] = t.rects[i].Union(r)
			t.stats.Merges++
			t.coalesce()
			return
		}
	}
	if t.n == MaxRects {
		t.mergeAll()
		t.rects[0] = t.rects[0].Union(r)
		return
	}
	t.rects[t.n] = r
	t.n++
	if t.n >= MergeThreshold {
		t.mergeAll()
	}
}

// All marks the whole tracked area.
func (t *Tracker) All() {
	t.rects[0] = t.bounds
	t.n = 1
}

// Empty reports whether nothing changed.
func (t *Tracker) Empty() bool { return t.n == 0 }

// Rects returns the current set. The slice is valid until the next call
// that modifies the tracker.
func (t *Tracker) Rects() []image.Rectangle { return t.rects[:t.n] }

// Bounds is the smallest rectangle covering every change.
func (t *Tracker) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, r := range t.rects[:t.n] {
		b = b.Union(r)
	}
	return b
}

// Area is the pixel count of the current set.
func (t *Tracker) Area() int {
	a := 0
	for _, r := range t.rects[:t.n] {
		a += r.Dx() * r.Dy()
	}
	return a
}

// Reset forgets every change after a flush.
func (t *Tracker) Reset() {
	if t.n > 0 {
		t.stats.Flushes++
	}
	t.n = 0
}

func (t *Tracker) Stats() Stats { return t.stats }

func (t *Tracker) mergeAll() {
	if t.n < 2 {
		return
	}
	t.rects[0] = t.Bounds()
	t.n = 1
	t.stats.Merges++
}

func (t *Tracker) coalesce() {
	for changed := true; changed; {
		changed = false
		for i := 0; i < t.n; i++ {
			for j := i + 1; j < t.n; j++ {
				if !near(t.rects[i], t.rects[j]) {
					continue
				}
				t.rects[i] = t.rects[i].Union(t.rects[j])
				t.n--
				t.rects[j] = t.rects[t.n]
				t.stats.Merges++
				changed = true
				j--
			}
		}
	}
}

// near reports whether a and b overlap or lie within Adjacency of each
// other on both axes.
func near(a, b image.Rectangle) bool {
	return a.Min.X <= b.Max.X+Adjacency && b.Min.X <= a.Max.X+Adjacency &&
		a.Min.Y <= b.Max.Y+Adjacency && b.Min.Y <= a.Max.Y+Adjacency
}

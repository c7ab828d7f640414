package font5x7

import (
	"image/color"
	"testing"

	"tinygo.org/x/tinyfont"
)

type recorder struct {
	w, h int16
	set  map[[2]int16]bool
}

func newRecorder(w, h int16) *recorder {
	return &recorder{w: w, h: h, set: map[[2]int16]bool{}}
}

func (r *recorder) Size() (int16, int16)              { return r.w, r.h }
func (r *recorder) SetPixel(x, y int16, _ color.RGBA) { r.set[[2]int16{x, y}] = true }
func (r *recorder) Display() error                    { return nil }

func TestGlyphPlacement(t *testing.T) {
	d := newRecorder(16, 16)
	// 'I' is a vertical bar in column 2 with serifs at rows 0 and 6.
	tinyfont.DrawChar(d, Font, 0, 6, 'I', color.RGBA{A: 255})

	for row := int16(0); row < Height; row++ {
		if !d.set[[2]int16{2, row}] {
			t.Fatalf("expected pixel at (2,%d)", row)
		}
	}
	if !d.set[[2]int16{1, 0}] || !d.set[[2]int16{3, 6}] {
		t.Fatal("expected serifs at (1,0) and (3,6)")
	}
	if d.set[[2]int16{0, 3}] {
		t.Fatal("expected column 0 to be blank")
	}
}

func TestSpaceIsBlank(t *testing.T) {
	d := newRecorder(8, 8)
	tinyfont.DrawChar(d, Font, 0, 6, ' ', color.RGBA{A: 255})
	if len(d.set) != 0 {
		t.Fatalf("expected no pixels, got %d", len(d.set))
	}
}

func TestUnknownRuneFallsBack(t *testing.T) {
	if Columns('☺') != Columns('?') {
		t.Fatal("expected unknown rune to render as '?'")
	}
	if Columns('\n') != Columns('?') {
		t.Fatal("expected control rune to render as '?'")
	}
}

func TestLineWidth(t *testing.T) {
	_, outbox := tinyfont.LineWidth(Font, "ABC")
	if outbox != 3*(Width+Spacing) {
		t.Fatalf("expected %d, got %d", 3*(Width+Spacing), outbox)
	}
	if Advance(2) != 11 {
		t.Fatalf("expected advance 11 at scale 2, got %d", Advance(2))
	}
}

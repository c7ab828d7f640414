package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"lcdpipe/backend"
	"lcdpipe/canvas"
	"lcdpipe/font5x7"
	"lcdpipe/pixel"
)

// showFault paints a white screen with the fault and as much of the stack
// as fits, then flushes it with a fresh context. Errors are ignored; there
// is nothing left to report them to.
func showFault(b backend.Backend, title, detail string, stack []byte) {
	lines := []string{"lcdpipe " + title + ":", detail}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, strings.TrimSpace(line))
		}
	}

	st := canvas.TextStyle{Color: pixel.Black}
	lineH := font5x7.Height + 2
	cols := b.Width() / font5x7.Advance(1)
	if cols <= 0 {
		cols = 1
	}

	b.Clear(pixel.White)
	y := 2
draw:
	for _, line := range lines {
		for len(line) > 0 {
			if y+lineH > b.Height() {
				break draw
			}
			chunk, rest := takeRunes(line, cols)
			b.DrawText(2, y, chunk, st)
			y += lineH
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = b.EnsureDisplayOn()
	_ = b.Flush(context.Background())
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}

package app

import (
	"context"
	"fmt"

	"lcdpipe/backend"
	"lcdpipe/canvas"
	"lcdpipe/internal/buildinfo"
	"lcdpipe/pixel"
)

func bootScreen(b backend.Backend, title string) error {
	h := b.Height()
	b.Clear(pixel.Black)
	b.DrawTextCentered(h/2-20, title, canvas.TextStyle{Color: pixel.TextPrimary, Scale: 3})
	b.DrawTextCentered(h/2+12, buildinfo.Line(), canvas.TextStyle{Color: pixel.TextSecondary, Scale: 1})
	b.DrawTextCentered(h/2+26, fmt.Sprintf("%s %dx%d", b.Name(), b.Width(), h), canvas.TextStyle{Color: pixel.TextSecondary, Scale: 1})
	if err := b.Flush(context.Background()); err != nil {
		return fmt.Errorf("app: boot screen: %w", err)
	}
	return nil
}

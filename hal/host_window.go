//go:build !tinygo && cgo

package hal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lcdpipe/pixel"
)

// WindowConfig controls the desktop preview.
type WindowConfig struct {
	Title string
	// Scale is the integer window zoom; 0 means 3.
	Scale int
	// Step runs once per tick before the frame is drawn.
	Step func() error
	// OnInput is called on any key press or mouse click.
	OnInput func()
}

// RunWindow opens a desktop window that shows screen and blocks until the
// window closes or Step fails.
func RunWindow(screen Screen, cfg WindowConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 3
	}
	w, h := screen.Size()
	g := &hostGame{screen: screen, cfg: cfg, w: w, h: h}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w*cfg.Scale, h*cfg.Scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	screen  Screen
	cfg     WindowConfig
	w, h    int
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []pixel.Color
}

func (g *hostGame) Update() error {
	if g.cfg.OnInput != nil {
		if len(inpututil.AppendJustPressedKeys(nil)) > 0 || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.cfg.OnInput()
		}
	}
	if g.cfg.Step != nil {
		if err := g.cfg.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, g.w, g.h))
		g.scratch = make([]pixel.Color, g.w*g.h)
		g.fbImg = ebiten.NewImage(g.w, g.h)
	}

	g.screen.Snapshot(g.scratch)

	dst := g.img.Pix
	for i, p := range g.scratch {
		r, gg, b := p.RGB()
		j := i * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(dst)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}

package sim

import "lcdpipe/hal"

// BoardConfig assembles a simulated board.
type BoardConfig struct {
	Panel  PanelConfig
	Engine EngineConfig
	Memory hal.Memory
	Log    hal.Logger
}

// Board is a hal.HAL whose bus pins and block transfer engine both feed
// one simulated panel.
type Board struct {
	hal.Board
	Panel   *Panel
	Harness *Harness
	Engine  *Engine
	Light   *hal.VirtualBacklight
}

func NewBoard(cfg BoardConfig) *Board {
	if cfg.Panel.Width == 0 {
		cfg.Panel = DefaultPanelConfig(cfg.Panel.Clock)
	}
	if cfg.Memory == (hal.Memory{}) {
		cfg.Memory = hal.Memory{Fast: 512 << 10, Bulk: 8 << 20}
	}
	p := NewPanel(cfg.Panel)
	h := NewHarness(p)
	e := NewEngine(p, cfg.Engine)
	light := &hal.VirtualBacklight{}
	return &Board{
		Board: hal.Board{
			Log:      cfg.Log,
			Clk:      cfg.Panel.Clock,
			Light:    light,
			BusPins:  h.Pins(),
			Engine:   e,
			ResetPin: h.ResetPin(),
			Mem:      cfg.Memory,
		},
		Panel:   p,
		Harness: h,
		Engine:  e,
		Light:   light,
	}
}

// Close stops the engine worker.
func (b *Board) Close() error { return b.Engine.Close() }

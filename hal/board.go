package hal

// Board is a HAL assembled from parts. Nil parts fall back to harmless
// defaults: discarded logs, the system clock and an ignored watchdog.
type Board struct {
	Log      Logger
	Clk      Clock
	WD       Watchdog
	Light    Backlight
	BusPins  *BusPins
	Engine   BlockTransfer
	ResetPin Pin
	Mem      Memory
}

func (b *Board) Logger() Logger {
	if b.Log == nil {
		return Discard
	}
	return b.Log
}

func (b *Board) Clock() Clock {
	if b.Clk == nil {
		return SystemClock{}
	}
	return b.Clk
}

func (b *Board) Watchdog() Watchdog {
	if b.WD == nil {
		return NopWatchdog{}
	}
	return b.WD
}

func (b *Board) Backlight() Backlight    { return b.Light }
func (b *Board) Pins() *BusPins          { return b.BusPins }
func (b *Board) Transfer() BlockTransfer { return b.Engine }
func (b *Board) Reset() Pin              { return b.ResetPin }
func (b *Board) Memory() Memory          { return b.Mem }

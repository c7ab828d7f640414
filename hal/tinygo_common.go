//go:build tinygo && baremetal

package hal

import "machine"

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func newUARTLogger() *uartLogger {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART_TX_PIN,
		RX:       machine.UART_RX_PIN,
	})
	return &uartLogger{uart: uart}
}

type machinePin machine.Pin

func outPin(p machine.Pin) Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return machinePin(p)
}

func (p machinePin) Set(high bool) error {
	machine.Pin(p).Set(high)
	return nil
}

// pinBacklight is on/off only; any non-zero level lights the panel.
type pinBacklight struct {
	pin machine.Pin
}

func (b *pinBacklight) SetLevel(level uint8) error {
	b.pin.Set(level > 0)
	return nil
}

type machineWatchdog struct{}

func (machineWatchdog) Feed() { machine.Watchdog.Update() }

func startWatchdog() Watchdog {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 5000})
	machine.Watchdog.Start()
	return machineWatchdog{}
}

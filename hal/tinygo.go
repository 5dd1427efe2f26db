//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

type tinyGoHAL struct {
	logger  *uartLogger
	leds    []LED
	buttons []GPIOPin
	entropy Entropy
	t       *tinyGoTime
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Buttons: GP14 / GP15, active low with pull-ups.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &tinyGoHAL{
		logger:  &uartLogger{uart: uart},
		leds:    []LED{&pinLED{pin: led}},
		buttons: []GPIOPin{newMachinePin("BTN0", machine.GP14), newMachinePin("BTN1", machine.GP15)},
		entropy: newXorshift(uint64(time.Now().UnixNano())),
		t:       newTinyGoTime(),
	}
}

func (h *tinyGoHAL) Logger() Logger     { return h.logger }
func (h *tinyGoHAL) LEDs() []LED        { return h.leds }
func (h *tinyGoHAL) Buttons() []GPIOPin { return h.buttons }
func (h *tinyGoHAL) Entropy() Entropy   { return h.entropy }
func (h *tinyGoHAL) Time() Time         { return h.t }

type tinyGoTime struct {
	ch  chan uint64
	seq uint64
}

func newTinyGoTime() *tinyGoTime {
	t := &tinyGoTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }

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

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

// machinePin exposes an active-low input pin as a GPIOPin whose Read
// reports "pressed".
type machinePin struct {
	name string
	pin  machine.Pin
}

func newMachinePin(name string, pin machine.Pin) GPIOPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &machinePin{name: name, pin: pin}
}

func (p *machinePin) Name() string   { return p.name }
func (p *machinePin) Caps() GPIOCaps { return GPIOCapInput }

func (p *machinePin) Configure(mode GPIOMode) error {
	if mode != GPIOModeInput {
		return ErrNotImplemented
	}
	return nil
}

func (p *machinePin) Read() (bool, error)    { return !p.pin.Get(), nil }
func (p *machinePin) Write(level bool) error { return ErrNotImplemented }

// xorshift is a small PRNG standing in for hardware entropy on boards
// without a TRNG peripheral.
type xorshift struct {
	state uint64
}

func newXorshift(seed uint64) *xorshift {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &xorshift{state: seed}
}

func (x *xorshift) Read(p []byte) (int, error) {
	for i := range p {
		x.state ^= x.state << 13
		x.state ^= x.state >> 7
		x.state ^= x.state << 17
		p[i] = byte(x.state)
	}
	return len(p), nil
}

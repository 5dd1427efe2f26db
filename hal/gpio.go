package hal

import (
	"fmt"
	"sync"
	"time"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
)

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode) error
	Read() (level bool, err error)
	Write(level bool) error
}

// virtualPin is an in-memory pin. The host window drives input pins through
// setLevel, which works regardless of the configured mode.
type virtualPin struct {
	mu    sync.Mutex
	name  string
	caps  GPIOCaps
	mode  GPIOMode
	level bool
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{name: name, caps: caps, mode: GPIOModeInput}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch mode {
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}
	p.mode = mode
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

// setLevel drives the pin externally, as a key press or wire would.
func (p *virtualPin) setLevel(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// signalPin is a read-only pin whose level follows a fixed duty cycle. It
// stands in for external signal sources on the host.
type signalPin struct {
	mu   sync.Mutex
	name string

	t0     time.Time
	now    func() time.Time
	period time.Duration
	high   time.Duration
}

func newSignalPin(name string, period, high time.Duration) GPIOPin {
	return newSignalPinWithClock(name, period, high, time.Now)
}

func newSignalPinWithClock(name string, period, high time.Duration, now func() time.Time) GPIOPin {
	if now == nil {
		now = time.Now
	}
	if period <= 0 {
		period = 1 * time.Second
	}
	if high < 0 {
		high = 0
	}
	if high > period {
		high = period
	}
	return &signalPin{
		name:   name,
		t0:     now(),
		now:    now,
		period: period,
		high:   high,
	}
}

func (p *signalPin) Name() string   { return p.name }
func (p *signalPin) Caps() GPIOCaps { return GPIOCapInput }

func (p *signalPin) Configure(mode GPIOMode) error {
	if mode != GPIOModeInput {
		return fmt.Errorf("gpio: pin %s: only input supported", p.name)
	}
	return nil
}

func (p *signalPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.t0)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	phase := elapsed % p.period
	return phase < p.high, nil
}

func (p *signalPin) Write(level bool) error {
	_ = level
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}

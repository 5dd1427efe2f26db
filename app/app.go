// Package app assembles the demo system: the in-process kernel, one capsule
// per peripheral and the userspace drivers on top. The demo blinks an LED on
// the alarm, prints a heartbeat line with fresh entropy, and reports button
// changes.
package app

import (
	"fmt"
	"time"

	capalarm "github.com/tock/design-explorations/capsules/alarm"
	capbtn "github.com/tock/design-explorations/capsules/button"
	capcon "github.com/tock/design-explorations/capsules/console"
	capled "github.com/tock/design-explorations/capsules/led"
	caprng "github.com/tock/design-explorations/capsules/rng"
	"github.com/tock/design-explorations/drivers/button"
	"github.com/tock/design-explorations/drivers/clock"
	"github.com/tock/design-explorations/drivers/console"
	"github.com/tock/design-explorations/drivers/led"
	"github.com/tock/design-explorations/drivers/rng"
	"github.com/tock/design-explorations/hal"
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

type Config struct {
	// BlinkPeriod is the LED toggle interval in ticks (milliseconds).
	BlinkPeriod uint64
	// HeartbeatEvery prints a console line every n blinks.
	HeartbeatEvery uint64
}

type system struct {
	k   *kernel.Kernel
	cfg Config

	con  *console.Console
	clk  *clock.Clock
	leds *led.LEDs
	rngs *rng.Stream

	ticks   <-chan uint64
	lastSeq uint64

	blinks  uint64
	presses uint64
}

// New initializes the OS on the given HAL and returns the step function the
// platform runner calls once per frame.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	if cfg.BlinkPeriod == 0 {
		cfg.BlinkPeriod = 500
	}
	if cfg.HeartbeatEvery == 0 {
		cfg.HeartbeatEvery = 4
	}
	return newSystem(h, cfg).step
}

// Run starts the OS and blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	step := New(h)
	for {
		if err := step(); err != nil {
			h.Logger().WriteLineString("app: " + err.Error())
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func newSystem(h hal.HAL, cfg Config) *system {
	k := kernel.New()
	k.AddCapsule(capalarm.DriverNum, capalarm.New())
	k.AddCapsule(capcon.DriverNum, capcon.New(&lineWriter{l: h.Logger()}))
	k.AddCapsule(caprng.DriverNum, caprng.New(h.Entropy()))
	k.AddCapsule(capled.DriverNum, capled.New(h.LEDs()))
	k.AddCapsule(capbtn.DriverNum, capbtn.New(h.Buttons()))

	s := &system{
		k:    k,
		cfg:  cfg,
		con:  console.New(k, 128, nil),
		leds: led.New(k),
		rngs: rng.NewStream(k, 4),
	}
	s.clk = clock.New(k, s.blink)

	if ht := h.Time(); ht != nil {
		s.ticks = ht.Ticks()
	}

	btns := button.New(k, s.buttonChanged)
	if n, rc := btns.Count(); rc == syscalls.ErrNone {
		for i := 0; i < n; i++ {
			btns.Enable(i)
		}
	}

	if rc := s.clk.Init(); rc == syscalls.ErrNone {
		s.clk.SetAlarm(cfg.BlinkPeriod)
	} else {
		h.Logger().WriteLineString("app: no alarm driver: " + rc.String())
	}
	if rc := s.rngs.Start(); rc != syscalls.ErrNone {
		h.Logger().WriteLineString("app: no entropy stream: " + rc.String())
		s.rngs = nil
	}

	s.con.Write([]byte("boot\n"))
	return s
}

// step drains the HAL timebase into the kernel and delivers completions.
// Everything else runs from upcall callbacks; step itself never blocks.
func (s *system) step() error {
	for {
		select {
		case seq := <-s.ticks:
			if seq > s.lastSeq {
				s.k.Tick(seq - s.lastSeq)
				s.lastSeq = seq
			}
		default:
			s.k.Yield()
			return nil
		}
	}
}

// blink runs on every alarm firing.
func (s *system) blink(now uint64) {
	s.leds.Toggle(0)
	s.blinks++

	if s.blinks%s.cfg.HeartbeatEvery == 0 && !s.con.Busy() {
		line := fmt.Sprintf("up %ds  blinks %d  presses %d", now/1000, s.blinks, s.presses)
		if s.rngs != nil {
			if chunk, rc := s.rngs.Next(); rc == syscalls.ErrNone {
				line += fmt.Sprintf("  rng %02x%02x%02x%02x", chunk[0], chunk[1], chunk[2], chunk[3])
			}
		}
		s.con.Write([]byte(line + "\n"))
	}

	if err := s.clk.SetAlarm(now + s.cfg.BlinkPeriod); err != nil {
		// Missed the slot; line up with the next one.
		if n, rc := s.clk.Now(); rc == syscalls.ErrNone {
			s.clk.SetAlarm(n + s.cfg.BlinkPeriod)
		}
	}
}

func (s *system) buttonChanged(i int, pressed bool) {
	if pressed {
		s.presses++
		s.leds.Toggle(1)
	}
	if !s.con.Busy() {
		state := "released"
		if pressed {
			state = "pressed"
		}
		s.con.Write([]byte(fmt.Sprintf("button %d %s\n", i, state)))
	}
}

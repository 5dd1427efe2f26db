// Package led is the kernel-side LED driver.
package led

import (
	"github.com/tock/design-explorations/hal"
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

const (
	DriverNum uint32 = 0x2

	// Commands.
	OpCount  uint32 = 0
	OpOn     uint32 = 1
	OpOff    uint32 = 2
	OpToggle uint32 = 3
)

// LEDs drives a fixed set of hal.LED outputs. hal.LED is level-only, so the
// capsule tracks the lit state itself for OpToggle.
type LEDs struct {
	leds []hal.LED
	lit  []bool
}

func New(leds []hal.LED) *LEDs {
	return &LEDs{leds: leds, lit: make([]bool, len(leds))}
}

// Lit reports the tracked state of one LED (simulator panels, tests).
func (l *LEDs) Lit(i int) bool {
	if i < 0 || i >= len(l.lit) {
		return false
	}
	return l.lit[i]
}

func (l *LEDs) Allow(env *kernel.Env, buffer uint32, mode syscalls.AllowMode, size int) syscalls.ErrorCode {
	return syscalls.ErrNoSupport
}

func (l *LEDs) Command(env *kernel.Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
	if op == OpCount {
		return uint32(len(l.leds)), syscalls.ErrNone
	}
	i := int(arg0)
	if i >= len(l.leds) {
		return 0, syscalls.ErrInvalid
	}
	switch op {
	case OpOn:
		l.set(i, true)
	case OpOff:
		l.set(i, false)
	case OpToggle:
		l.set(i, !l.lit[i])
	default:
		return 0, syscalls.ErrNoSupport
	}
	return 0, syscalls.ErrNone
}

func (l *LEDs) set(i int, on bool) {
	l.lit[i] = on
	if on {
		l.leds[i].High()
	} else {
		l.leds[i].Low()
	}
}

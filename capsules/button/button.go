// Package button is the kernel-side button driver. Buttons are GPIO input
// pins sampled on the timebase; level changes on interrupt-enabled pins are
// reported as upcalls.
package button

import (
	"github.com/tock/design-explorations/hal"
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

const (
	DriverNum uint32 = 0x3

	// Commands.
	OpCount   uint32 = 0
	OpEnable  uint32 = 1
	OpDisable uint32 = 2
	OpRead    uint32 = 3

	// Events. EventChanged carries (index, level) in (a0, a1).
	EventChanged uint32 = 0
)

// Buttons samples a fixed set of input pins.
type Buttons struct {
	pins    []hal.GPIOPin
	enabled []bool
	last    []bool
}

func New(pins []hal.GPIOPin) *Buttons {
	b := &Buttons{
		pins:    pins,
		enabled: make([]bool, len(pins)),
		last:    make([]bool, len(pins)),
	}
	for i, pin := range pins {
		if pin == nil {
			continue
		}
		level, err := pin.Read()
		if err == nil {
			b.last[i] = level
		}
	}
	return b
}

func (b *Buttons) Allow(env *kernel.Env, buffer uint32, mode syscalls.AllowMode, size int) syscalls.ErrorCode {
	return syscalls.ErrNoSupport
}

func (b *Buttons) Command(env *kernel.Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
	if op == OpCount {
		return uint32(len(b.pins)), syscalls.ErrNone
	}
	i := int(arg0)
	if i >= len(b.pins) || b.pins[i] == nil {
		return 0, syscalls.ErrInvalid
	}
	switch op {
	case OpEnable:
		b.enabled[i] = true
	case OpDisable:
		b.enabled[i] = false
	case OpRead:
		level, err := b.pins[i].Read()
		if err != nil {
			return 0, syscalls.ErrFail
		}
		if level {
			return 1, syscalls.ErrNone
		}
		return 0, syscalls.ErrNone
	default:
		return 0, syscalls.ErrNoSupport
	}
	return 0, syscalls.ErrNone
}

func (b *Buttons) Tick(env *kernel.Env, now uint64) {
	for i, pin := range b.pins {
		if pin == nil {
			continue
		}
		level, err := pin.Read()
		if err != nil || level == b.last[i] {
			continue
		}
		b.last[i] = level
		if !b.enabled[i] {
			continue
		}
		var lvl uint32
		if level {
			lvl = 1
		}
		env.Post(EventChanged, uint32(i), lvl, 0)
	}
}

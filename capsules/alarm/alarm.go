// Package alarm is the kernel-side timebase driver: it exposes the low 32
// bits of the tick counter and a single compare alarm.
//
// Userspace sees only 32 bits on purpose — unwrapping into a 64-bit timeline
// is the userspace clock's job (drivers/clock).
package alarm

import (
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

const (
	DriverNum uint32 = 0x0

	// Commands.
	OpTicks    uint32 = 2
	OpSetAlarm uint32 = 4

	// Events.
	EventFired uint32 = 0
)

// Alarm holds at most one armed setpoint. Re-arming replaces it.
type Alarm struct {
	armed    bool
	base     uint32
	setpoint uint32
}

func New() *Alarm {
	return &Alarm{}
}

func (a *Alarm) Command(env *kernel.Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
	switch op {
	case OpTicks:
		return uint32(env.Ticks()), syscalls.ErrNone
	case OpSetAlarm:
		a.base = uint32(env.Ticks())
		a.setpoint = arg0
		a.armed = true
		return 0, syscalls.ErrNone
	default:
		return 0, syscalls.ErrNoSupport
	}
}

func (a *Alarm) Allow(env *kernel.Env, buffer uint32, mode syscalls.AllowMode, size int) syscalls.ErrorCode {
	return syscalls.ErrNoSupport
}

// Tick fires the alarm once the counter has moved from the arming point to
// (or past) the setpoint. All arithmetic wraps at 32 bits, so a setpoint
// "in the past" simply waits a full counter revolution; the userspace clock
// detects and recovers from that case itself.
func (a *Alarm) Tick(env *kernel.Env, now uint64) {
	if !a.armed {
		return
	}
	now32 := uint32(now)
	if now32-a.base >= a.setpoint-a.base {
		a.armed = false
		env.Post(EventFired, now32, a.setpoint, 0)
	}
}

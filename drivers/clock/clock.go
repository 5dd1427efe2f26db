// Package clock extends the kernel's 32-bit tick counter to a 64-bit
// timebase in userspace. The kernel alarm is kept armed at most UpdatePeriod
// ticks ahead so the counter is observed often enough to unwrap it.
package clock

import (
	"errors"
	"math"

	"github.com/tock/design-explorations/syscalls"
)

const (
	driverNum uint32 = 0x0

	opTicks    uint32 = 2
	opSetAlarm uint32 = 4

	eventFired uint32 = 0
)

// UpdatePeriod is the longest the kernel alarm is allowed to sleep. It must
// be well under 2^31 so two observations of the counter can never be more
// than half a wrap apart.
const UpdatePeriod = 1 << 30

// ErrInPast reports that the requested alarm time had already passed when
// SetAlarm ran. The alarm is not armed and the callback will not fire.
var ErrInPast = errors.New("clock: alarm time already passed")

// none marks "no client alarm set".
const none = math.MaxUint64

// Clock is a userspace timekeeper. It supports a single outstanding alarm.
type Clock struct {
	t syscalls.Transport

	// last is a 64-bit time whose low 32 bits matched the kernel counter
	// when it was recorded. Every unwrap is relative to it.
	last     uint64
	setpoint uint64

	onAlarm func(now uint64)
}

// New creates a clock. onAlarm runs inside the alarm upcall and may be nil.
func New(t syscalls.Transport, onAlarm func(now uint64)) *Clock {
	return &Clock{t: t, setpoint: none, onAlarm: onAlarm}
}

// Init subscribes to the alarm driver and arms the first refresh alarm.
func (c *Clock) Init() syscalls.ErrorCode {
	if rc := c.t.Subscribe(driverNum, eventFired, c.fired); rc != syscalls.ErrNone {
		return rc
	}
	now, rc := c.t.Command(driverNum, opTicks, 0, 0)
	if rc != syscalls.ErrNone {
		return rc
	}
	c.last = uint64(now)
	c.setpoint = none
	_, rc = c.t.Command(driverNum, opSetAlarm, now+UpdatePeriod, 0)
	return rc
}

// Now reads the kernel counter and unwraps it to 64 bits.
func (c *Clock) Now() (uint64, syscalls.ErrorCode) {
	ticks, rc := c.t.Command(driverNum, opTicks, 0, 0)
	if rc != syscalls.ErrNone {
		return 0, rc
	}
	now := unwrap(c.last, ticks)
	c.last = now
	return now, syscalls.ErrNone
}

// Alarm returns the pending alarm time, or false when none is set.
func (c *Clock) Alarm() (uint64, bool) {
	return c.setpoint, c.setpoint != none
}

// SetAlarm arranges for the callback to fire once the timebase reaches at.
// Times beyond the next refresh alarm are held in userspace and armed later.
func (c *Clock) SetAlarm(at uint64) error {
	c.setpoint = at
	if at >= c.last+UpdatePeriod {
		// The refresh alarm fires first and re-arms toward at.
		return nil
	}
	if _, rc := c.t.Command(driverNum, opSetAlarm, uint32(at), 0); rc != syscalls.ErrNone {
		c.setpoint = none
		return rc.Err()
	}
	now, rc := c.Now()
	if rc != syscalls.ErrNone {
		return rc.Err()
	}
	if now >= at {
		// Raced past the setpoint before the hardware was armed. Restore
		// the refresh alarm and report the miss.
		c.setpoint = none
		c.t.Command(driverNum, opSetAlarm, uint32(c.last)+UpdatePeriod, 0)
		return ErrInPast
	}
	return nil
}

// ClearAlarm drops the pending alarm; the refresh alarm keeps running.
func (c *Clock) ClearAlarm() {
	c.setpoint = none
}

// Sleep blocks for dt ticks, yielding until the alarm fires.
func (c *Clock) Sleep(dt uint64) error {
	now, rc := c.Now()
	if rc != syscalls.ErrNone {
		return rc.Err()
	}
	if err := c.SetAlarm(now + dt); err != nil {
		if errors.Is(err, ErrInPast) {
			return nil
		}
		return err
	}
	for c.setpoint != none {
		c.t.YieldWait()
	}
	return nil
}

// fired handles the kernel alarm upcall. a1 carries the expired setpoint.
func (c *Clock) fired(a0, a1, a2 uint32) {
	c.last = unwrap(c.last, a1)
	for {
		next := c.last + UpdatePeriod
		if c.setpoint < next {
			next = c.setpoint
		}
		c.t.Command(driverNum, opSetAlarm, uint32(next), 0)
		now, rc := c.Now()
		if rc != syscalls.ErrNone {
			return
		}
		if now < c.setpoint {
			return
		}
		// The client alarm expired, possibly while we were re-arming.
		c.setpoint = none
		if c.onAlarm != nil {
			c.onAlarm(now)
		}
	}
}

// unwrap extends a 32-bit counter reading to 64 bits, assuming it was taken
// less than half a wrap after the reference time.
func unwrap(ref uint64, ticks uint32) uint64 {
	return ref + uint64(ticks-uint32(ref))
}

// Package led is the userspace LED client.
package led

import "github.com/tock/design-explorations/syscalls"

const (
	driverNum uint32 = 0x2

	opCount  uint32 = 0
	opOn     uint32 = 1
	opOff    uint32 = 2
	opToggle uint32 = 3
)

// LEDs drives the board LEDs through the kernel.
type LEDs struct {
	t syscalls.Transport
}

func New(t syscalls.Transport) *LEDs {
	return &LEDs{t: t}
}

func (l *LEDs) Count() (int, syscalls.ErrorCode) {
	n, rc := l.t.Command(driverNum, opCount, 0, 0)
	return int(n), rc
}

func (l *LEDs) On(i int) syscalls.ErrorCode {
	_, rc := l.t.Command(driverNum, opOn, uint32(i), 0)
	return rc
}

func (l *LEDs) Off(i int) syscalls.ErrorCode {
	_, rc := l.t.Command(driverNum, opOff, uint32(i), 0)
	return rc
}

func (l *LEDs) Toggle(i int) syscalls.ErrorCode {
	_, rc := l.t.Command(driverNum, opToggle, uint32(i), 0)
	return rc
}

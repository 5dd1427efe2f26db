package allow

import "github.com/tock/design-explorations/syscalls"

// Side identifies which half of a DoubleBuffer is lent to the kernel.
type Side uint8

const (
	SideNone Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "none"
	}
}

// DoubleBuffer streams data continuously through two equally sized buffers
// under one grant id: one side is always lent to the kernel while the other
// belongs to the application, and each completed transfer swaps the roles.
type DoubleBuffer struct {
	a, b   *Buffer
	mode   syscalls.AllowMode
	active Side
}

// NewDoubleBuffer creates a stopped stream with two zeroed size-byte buffers.
func NewDoubleBuffer(t syscalls.Transport, id syscalls.AllowID, size int, mode syscalls.AllowMode) *DoubleBuffer {
	return &DoubleBuffer{
		a:    New(t, id, size),
		b:    New(t, id, size),
		mode: mode,
	}
}

// Active reports which side is currently lent to the kernel. SideNone only
// before a successful Start.
func (d *DoubleBuffer) Active() Side { return d.active }

// Start lends side A to the kernel. On a kernel rejection the stream stays
// stopped and the code is returned verbatim.
func (d *DoubleBuffer) Start() syscalls.ErrorCode {
	if d.active != SideNone {
		return syscalls.ErrAlready
	}
	if rc := d.a.Share(d.mode); rc != syscalls.ErrNone {
		return rc
	}
	d.active = SideA
	return syscalls.ErrNone
}

// Advance swaps the sides: the active buffer is reclaimed and returned to the
// application, the idle buffer is lent to the kernel and becomes active.
//
// Call it only after the completion upcall for the active side's transfer has
// been observed; calling earlier races the kernel and cannot be detected here.
//
// Fails with ErrOff before Start. If the kernel rejects the new grant the
// swap does not happen: the previously active side remains lent, the stream
// stays on it, and no storage is returned (the active storage still belongs
// to the kernel).
func (d *DoubleBuffer) Advance() ([]byte, syscalls.ErrorCode) {
	var act, idle *Buffer
	var next Side
	switch d.active {
	case SideA:
		act, idle, next = d.a, d.b, SideB
	case SideB:
		act, idle, next = d.b, d.a, SideA
	default:
		return nil, syscalls.ErrOff
	}
	out, rc := act.Exchange(idle)
	if rc != syscalls.ErrNone {
		return nil, rc
	}
	d.active = next
	return out, syscalls.ErrNone
}

// Close revokes whichever side is currently lent and stops the stream.
func (d *DoubleBuffer) Close() {
	d.a.Close()
	d.b.Close()
	d.active = SideNone
}

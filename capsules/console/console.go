// Package console is the kernel-side console output driver. Userspace lends
// a read-only buffer, issues a write command, and receives a completion
// upcall once the bytes have been consumed.
package console

import (
	"io"

	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

const (
	DriverNum uint32 = 0x1

	// Buffers.
	BufferWrite uint32 = 1 // read-only

	// Commands.
	OpWrite uint32 = 1

	// Events. EventWriteDone carries the byte count in a0.
	EventWriteDone uint32 = 1
)

// Console drains shared buffers into an io.Writer (stdout on host, UART on
// boards).
type Console struct {
	out io.Writer
}

func New(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Allow(env *kernel.Env, buffer uint32, mode syscalls.AllowMode, size int) syscalls.ErrorCode {
	if buffer != BufferWrite {
		return syscalls.ErrNoSupport
	}
	if mode != syscalls.AllowRO {
		return syscalls.ErrInvalid
	}
	return syscalls.ErrNone
}

func (c *Console) Command(env *kernel.Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
	switch op {
	case OpWrite:
		buf, ok := env.Grant(BufferWrite, syscalls.AllowRO)
		if !ok {
			return 0, syscalls.ErrReserve
		}
		n := int(arg0)
		if n > len(buf) {
			return 0, syscalls.ErrSize
		}
		if c.out != nil {
			if _, err := c.out.Write(buf[:n]); err != nil {
				return 0, syscalls.ErrFail
			}
		}
		env.Post(EventWriteDone, uint32(n), 0, 0)
		return uint32(n), syscalls.ErrNone
	default:
		return 0, syscalls.ErrNoSupport
	}
}

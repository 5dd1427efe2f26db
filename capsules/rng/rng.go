// Package rng is the kernel-side entropy driver. Userspace lends a
// read-write buffer, asks for n bytes, and receives a completion upcall once
// the buffer has been filled.
package rng

import (
	"io"

	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

const (
	DriverNum uint32 = 0x40001

	// Buffers.
	BufferFill uint32 = 0 // read-write

	// Commands.
	OpGetBytes uint32 = 1

	// Events. EventDone carries the byte count in a0.
	EventDone uint32 = 0
)

// Rng fills shared buffers from an entropy source.
type Rng struct {
	src io.Reader
}

func New(src io.Reader) *Rng {
	return &Rng{src: src}
}

func (r *Rng) Allow(env *kernel.Env, buffer uint32, mode syscalls.AllowMode, size int) syscalls.ErrorCode {
	if buffer != BufferFill {
		return syscalls.ErrNoSupport
	}
	if mode != syscalls.AllowRW {
		return syscalls.ErrInvalid
	}
	return syscalls.ErrNone
}

func (r *Rng) Command(env *kernel.Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
	switch op {
	case OpGetBytes:
		buf, ok := env.Grant(BufferFill, syscalls.AllowRW)
		if !ok {
			return 0, syscalls.ErrReserve
		}
		n := int(arg0)
		if n > len(buf) {
			return 0, syscalls.ErrSize
		}
		if r.src == nil {
			return 0, syscalls.ErrOff
		}
		if _, err := io.ReadFull(r.src, buf[:n]); err != nil {
			return 0, syscalls.ErrFail
		}
		env.Post(EventDone, uint32(n), 0, 0)
		return uint32(n), syscalls.ErrNone
	default:
		return 0, syscalls.ErrNoSupport
	}
}

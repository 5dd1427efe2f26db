// Package console is the userspace console client: it lends a read-only
// buffer to the console driver, issues the write, and reclaims the buffer on
// the completion upcall.
package console

import (
	"github.com/tock/design-explorations/allow"
	"github.com/tock/design-explorations/syscalls"
)

const (
	driverNum   uint32 = 0x1
	writeBuffer uint32 = 1

	opWrite        uint32 = 1
	eventWriteDone uint32 = 1
)

var writeID = syscalls.AllowID{Driver: driverNum, Buffer: writeBuffer}

// Console writes to the kernel console. One write may be in flight at a time;
// Write reports ErrBusy until the previous completion has been delivered.
type Console struct {
	t   syscalls.Transport
	buf *allow.Buffer

	busy       bool
	subscribed bool

	// onDone, when set, runs inside the completion upcall with the number
	// of bytes the kernel consumed.
	onDone func(n int)
}

// New creates a console client with an owned staging buffer of size bytes.
// onDone may be nil for callers that only use the synchronous Print.
func New(t syscalls.Transport, size int, onDone func(n int)) *Console {
	return &Console{
		t:      t,
		buf:    allow.New(t, writeID, size),
		onDone: onDone,
	}
}

// Write copies p into the staging buffer, lends it to the kernel read-only
// and starts the write. Completion arrives at the next yield point.
func (c *Console) Write(p []byte) syscalls.ErrorCode {
	if c.busy {
		return syscalls.ErrBusy
	}
	staging, ok := c.buf.Bytes()
	if !ok {
		return syscalls.ErrBusy
	}
	if len(p) > len(staging) {
		return syscalls.ErrSize
	}
	copy(staging, p)

	if !c.subscribed {
		if rc := c.t.Subscribe(driverNum, eventWriteDone, c.writeDone); rc != syscalls.ErrNone {
			return rc
		}
		c.subscribed = true
	}
	if rc := c.buf.Share(syscalls.AllowRO); rc != syscalls.ErrNone {
		return rc
	}
	if _, rc := c.t.Command(driverNum, opWrite, uint32(len(p)), 0); rc != syscalls.ErrNone {
		// The write never started; take the buffer back.
		c.buf.Reclaim()
		return rc
	}
	c.busy = true
	return syscalls.ErrNone
}

// Print writes s and yields until the write has completed.
func (c *Console) Print(s string) syscalls.ErrorCode {
	if rc := c.Write([]byte(s)); rc != syscalls.ErrNone {
		return rc
	}
	for c.busy {
		c.t.YieldWait()
	}
	return syscalls.ErrNone
}

// Println is Print with a trailing newline.
func (c *Console) Println(s string) syscalls.ErrorCode {
	return c.Print(s + "\n")
}

// Busy reports whether a write is in flight.
func (c *Console) Busy() bool { return c.busy }

// Close reclaims any in-flight buffer and revokes the grant.
func (c *Console) Close() {
	c.buf.Close()
	c.busy = false
}

func (c *Console) writeDone(a0, a1, a2 uint32) {
	c.buf.Reclaim()
	c.busy = false
	if c.onDone != nil {
		c.onDone(int(a0))
	}
}

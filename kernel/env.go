package kernel

import "github.com/tock/design-explorations/syscalls"

// Env gives a capsule access to its slice of kernel state: its grants, its
// upcall events and the timebase. Capsules never hold kernel references
// directly; the kernel passes the Env into every capsule call.
type Env struct {
	k      *Kernel
	driver uint32
}

// Driver returns the capsule's driver number.
func (e *Env) Driver() uint32 { return e.driver }

// Ticks returns the 64-bit tick counter.
func (e *Env) Ticks() uint64 { return e.k.ticks }

// Grant returns the region currently shared under the capsule's buffer
// number, if one is shared with the required access mode.
func (e *Env) Grant(buffer uint32, mode syscalls.AllowMode) ([]byte, bool) {
	g, ok := e.k.grants[syscalls.AllowID{Driver: e.driver, Buffer: buffer}]
	if !ok || g.mode != mode {
		return nil, false
	}
	return g.data, true
}

// Post queues a completion upcall for the capsule's event. It is delivered at
// the application's next yield point, never synchronously.
func (e *Env) Post(event, a0, a1, a2 uint32) {
	e.k.post(e.driver, event, a0, a1, a2)
}

package allow

import "github.com/tock/design-explorations/syscalls"

// Buffer owns a storage region that can be lent to the kernel.
//
// The storage is allocated (or adopted) at construction and is never
// reallocated or handed off, so its address is stable for the Buffer's whole
// life — the kernel can hold the raw address for as long as the grant lasts.
//
// A Buffer constructed with New/NewFromBytes has its AllowID fixed up front;
// call sites that know their driver statically pay no per-call id plumbing.
// NewDynamic/NewDynamicFromBytes leave the id to be chosen at each ShareAs,
// for code that multiplexes one buffer across drivers.
type Buffer struct {
	t     syscalls.Transport
	data  []byte
	state State

	// id of the current grant while shared; the construction-time id when
	// fixed is set.
	id    syscalls.AllowID
	fixed bool
}

// New returns an unshared Buffer with zeroed storage of the given size and a
// fixed AllowID.
func New(t syscalls.Transport, id syscalls.AllowID, size int) *Buffer {
	return &Buffer{t: t, data: make([]byte, size), id: id, fixed: true}
}

// NewFromBytes adopts data as the Buffer's storage. The caller hands over
// ownership: it must not read or write data directly afterwards, only through
// the Buffer. Useful for sharing process-lifetime data read-only without a
// copy.
func NewFromBytes(t syscalls.Transport, id syscalls.AllowID, data []byte) *Buffer {
	return &Buffer{t: t, data: data, id: id, fixed: true}
}

// NewDynamic is New without a fixed AllowID; the id is picked per ShareAs.
func NewDynamic(t syscalls.Transport, size int) *Buffer {
	return &Buffer{t: t, data: make([]byte, size)}
}

// NewDynamicFromBytes is NewFromBytes without a fixed AllowID.
func NewDynamicFromBytes(t syscalls.Transport, data []byte) *Buffer {
	return &Buffer{t: t, data: data}
}

// State reports the current share state.
func (b *Buffer) State() State { return b.state }

// Shared reports whether the storage is currently lent to the kernel.
func (b *Buffer) Shared() bool { return b.state != Unshared }

// Len returns the storage length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// ID returns the grant id. For a fixed-id Buffer it is always valid; for a
// dynamic Buffer it is valid only while shared.
func (b *Buffer) ID() (syscalls.AllowID, bool) {
	return b.id, b.fixed || b.state != Unshared
}

// Share lends the storage to the kernel under the fixed AllowID.
//
// Fails with ErrAlready if the buffer is already shared (no kernel call is
// made) and with ErrInvalid on a dynamic-id buffer. A kernel rejection is
// returned verbatim and leaves the buffer unshared.
func (b *Buffer) Share(mode syscalls.AllowMode) syscalls.ErrorCode {
	if !b.fixed {
		return syscalls.ErrInvalid
	}
	return b.ShareAs(b.id, mode)
}

// ShareAs lends the storage to the kernel under id. On a fixed-id buffer the
// id must match the one set at construction.
func (b *Buffer) ShareAs(id syscalls.AllowID, mode syscalls.AllowMode) syscalls.ErrorCode {
	if b.state != Unshared {
		return syscalls.ErrAlready
	}
	if b.fixed && id != b.id {
		return syscalls.ErrInvalid
	}
	if mode != syscalls.AllowRO && mode != syscalls.AllowRW {
		return syscalls.ErrInvalid
	}
	if rc := b.t.Allow(id, mode, b.data); rc != syscalls.ErrNone {
		return rc
	}
	b.id = id
	b.state = stateFor(mode)
	return syscalls.ErrNone
}

// Bytes returns the storage for application access.
//
// While the buffer is shared it returns (nil, false): the kernel may be
// reading or writing the storage concurrently and the application must not
// touch it. This is not an error — retry after the completion upcall. Callers
// must not retain the returned slice across a later Share.
func (b *Buffer) Bytes() ([]byte, bool) {
	if b.state != Unshared {
		return nil, false
	}
	return b.data, true
}

// Reclaim revokes the grant if one is active and returns the storage.
//
// It never fails and is idempotent: the unshare's outcome is discarded because
// an id that was never validly shared cannot fail to unshare (a documented
// guarantee of the share primitive). Reclaim doubles as cancellation — it is
// safe to call before the kernel's operation has completed.
func (b *Buffer) Reclaim() []byte {
	if b.state != Unshared {
		b.t.Unallow(b.id, modeFor(b.state))
		b.state = Unshared
	}
	return b.data
}

// Exchange lends other's storage to the kernel in place of b's, under b's
// current id and mode, and returns b's storage.
//
// The replacement is a single allow call, which the kernel treats as an atomic
// swap: there is no window where the grant points at invalid memory. Only on
// success does the shared state transfer from b to other.
//
// Requires b shared (ErrInvalid otherwise) and other unshared (ErrAlready).
// On any failure b remains shared and nothing is torn down; the returned slice
// still points at b's storage, but it is not safe to touch until the error is
// handled and b is reclaimed.
func (b *Buffer) Exchange(other *Buffer) ([]byte, syscalls.ErrorCode) {
	if b.state == Unshared {
		return b.data, syscalls.ErrInvalid
	}
	if other == b || other.state != Unshared {
		return b.data, syscalls.ErrAlready
	}
	if other.t != b.t || (other.fixed && other.id != b.id) {
		return b.data, syscalls.ErrInvalid
	}
	mode := modeFor(b.state)
	if rc := b.t.Allow(b.id, mode, other.data); rc != syscalls.ErrNone {
		return b.data, rc
	}
	other.id = b.id
	other.state = b.state
	b.state = Unshared
	return b.data, syscalls.ErrNone
}

// Close revokes any active grant. It must run before the Buffer is abandoned:
// the kernel is never left holding a reference to reclaimed storage. There is
// no error to report — see Reclaim. Safe to call repeatedly.
func (b *Buffer) Close() {
	if b.state != Unshared {
		b.t.Unallow(b.id, modeFor(b.state))
		b.state = Unshared
	}
}

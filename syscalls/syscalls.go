// Package syscalls defines the system-call contract between userspace code
// and the kernel: buffer sharing (allow), driver commands, completion upcalls
// and yield points.
//
// The package is a pure contract. The real implementation on hardware is the
// two-register trap veneer; in-process implementations (package kernel, test
// fakes) satisfy the same interface.
package syscalls

// AllowID names a kernel-side buffer slot: which driver the grant belongs to
// and which of the driver's buffer numbers it fills.
type AllowID struct {
	Driver uint32
	Buffer uint32
}

// AllowMode selects the kernel's access to a shared buffer.
type AllowMode uint8

const (
	// AllowRO grants the kernel read access only.
	AllowRO AllowMode = iota + 1
	// AllowRW grants the kernel read and write access.
	AllowRW
)

func (m AllowMode) String() string {
	switch m {
	case AllowRO:
		return "ro"
	case AllowRW:
		return "rw"
	default:
		return "invalid"
	}
}

// Upcall is a completion notification registered via Subscribe. Upcalls run
// only inside Yield/YieldWait, never concurrently with application code.
type Upcall func(a0, a1, a2 uint32)

// Transport is the raw system-call surface.
//
// All calls are synchronous and non-blocking except YieldWait, which suspends
// until at least one upcall has been delivered. The runtime is single-threaded
// and cooperative: implementations must not deliver upcalls outside
// Yield/YieldWait.
type Transport interface {
	// Allow shares p with the kernel under id. The kernel may access p per
	// mode until the same id is re-allowed or unallowed. The address and
	// length of p are captured; the caller must keep p alive and in place
	// (package allow enforces this structurally).
	Allow(id AllowID, mode AllowMode, p []byte) ErrorCode

	// Unallow revokes the grant for id, after which the kernel will not
	// touch the memory again. Safe to call when nothing is shared under id:
	// an id that was never validly shared cannot fail to unshare, so there
	// is no result to report.
	Unallow(id AllowID, mode AllowMode)

	// Command invokes a driver operation. The uint32 is a driver-defined
	// return value, meaningful only when the code is ErrNone.
	Command(driver, op, arg0, arg1 uint32) (uint32, ErrorCode)

	// Subscribe registers fn as the upcall for (driver, event). A nil fn
	// unsubscribes.
	Subscribe(driver, event uint32, fn Upcall) ErrorCode

	// Yield delivers all pending upcalls and returns.
	Yield()

	// YieldWait suspends until at least one upcall has been delivered.
	YieldWait()
}

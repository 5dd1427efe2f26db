// Package kernel is an in-process kernel implementing the system-call
// transport: a capsule (driver) table, the allow-grant registry, upcall
// subscriptions and a cooperative yield-point delivery queue.
//
// It backs the host simulator, the demo binaries and the driver tests. The
// whole kernel runs on the application's goroutine: capsules execute
// synchronously inside Command/Allow/Tick, completions are queued and
// delivered only inside Yield/YieldWait. No locking anywhere — the HAL edge
// owns any synchronization with platform threads.
package kernel

import "github.com/tock/design-explorations/syscalls"

// Capsule is a kernel-side driver.
type Capsule interface {
	// Command executes a driver operation synchronously. Completions are
	// posted through env, never invoked directly.
	Command(env *Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode)

	// Allow vets a grant before the kernel registers it: buffer number,
	// access mode and region size. Revocations bypass this check.
	Allow(env *Env, buffer uint32, mode syscalls.AllowMode, size int) syscalls.ErrorCode
}

// Ticker is implemented by capsules that need the timebase.
type Ticker interface {
	Tick(env *Env, now uint64)
}

type grant struct {
	data []byte
	mode syscalls.AllowMode
}

type subKey struct {
	driver uint32
	event  uint32
}

type entry struct {
	capsule Capsule
	env     *Env
}

// Kernel implements syscalls.Transport.
type Kernel struct {
	capsules map[uint32]*entry
	grants   map[syscalls.AllowID]grant
	subs     map[subKey]syscalls.Upcall
	pending  upcallRing

	ticks   uint64
	dropped uint64

	idle func()
}

// New creates an empty kernel.
func New() *Kernel {
	return &Kernel{
		capsules: make(map[uint32]*entry),
		grants:   make(map[syscalls.AllowID]grant),
		subs:     make(map[subKey]syscalls.Upcall),
	}
}

// AddCapsule installs a driver under the given number, replacing any previous
// one.
func (k *Kernel) AddCapsule(driver uint32, c Capsule) {
	k.capsules[driver] = &entry{capsule: c, env: &Env{k: k, driver: driver}}
}

// SetIdle installs the hook YieldWait runs while nothing is pending. The
// default advances the timebase by one tick, which keeps self-contained
// programs and tests live; the host runner installs a real-time hook instead.
func (k *Kernel) SetIdle(fn func()) { k.idle = fn }

// Ticks returns the 64-bit tick counter.
func (k *Kernel) Ticks() uint64 { return k.ticks }

// Dropped returns the number of completions lost to a full upcall queue.
func (k *Kernel) Dropped() uint64 { return k.dropped }

// Tick advances the timebase by n ticks and runs tick-driven capsules.
func (k *Kernel) Tick(n uint64) {
	k.ticks += n
	for _, e := range k.capsules {
		if t, ok := e.capsule.(Ticker); ok {
			t.Tick(e.env, k.ticks)
		}
	}
}

// Allow registers, replaces or (with a nil region) revokes the grant for id.
// Replacing is atomic from the capsule's point of view: the old region is
// unreachable the moment the new one is registered.
func (k *Kernel) Allow(id syscalls.AllowID, mode syscalls.AllowMode, p []byte) syscalls.ErrorCode {
	e := k.capsules[id.Driver]
	if e == nil {
		return syscalls.ErrNoDevice
	}
	if p == nil {
		delete(k.grants, id)
		return syscalls.ErrNone
	}
	if mode != syscalls.AllowRO && mode != syscalls.AllowRW {
		return syscalls.ErrInvalid
	}
	if rc := e.capsule.Allow(e.env, id.Buffer, mode, len(p)); rc != syscalls.ErrNone {
		return rc
	}
	k.grants[id] = grant{data: p, mode: mode}
	return syscalls.ErrNone
}

// Unallow revokes the grant for id. Nothing to report: revoking an id that
// holds no grant is a no-op by contract.
func (k *Kernel) Unallow(id syscalls.AllowID, mode syscalls.AllowMode) {
	_ = mode
	delete(k.grants, id)
}

// Command routes a driver operation.
func (k *Kernel) Command(driver, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
	e := k.capsules[driver]
	if e == nil {
		return 0, syscalls.ErrNoDevice
	}
	return e.capsule.Command(e.env, op, arg0, arg1)
}

// Subscribe registers fn as the upcall for (driver, event); nil unsubscribes.
func (k *Kernel) Subscribe(driver, event uint32, fn syscalls.Upcall) syscalls.ErrorCode {
	if k.capsules[driver] == nil {
		return syscalls.ErrNoDevice
	}
	key := subKey{driver: driver, event: event}
	if fn == nil {
		delete(k.subs, key)
		return syscalls.ErrNone
	}
	k.subs[key] = fn
	return syscalls.ErrNone
}

// Yield delivers all pending upcalls, including ones posted by the handlers
// it runs.
func (k *Kernel) Yield() {
	for k.deliverOne() {
	}
}

// YieldWait suspends (cooperatively) until one upcall has been delivered,
// running the idle hook whenever the queue is empty.
func (k *Kernel) YieldWait() {
	for !k.deliverOne() {
		if k.idle != nil {
			k.idle()
			continue
		}
		k.Tick(1)
	}
}

// deliverOne pops completions until one has a subscriber and delivers it.
// Completions without a subscriber are discarded, matching the hardware
// behavior of an upcall on a cleared subscription.
func (k *Kernel) deliverOne() bool {
	for {
		p, ok := k.pending.pop()
		if !ok {
			return false
		}
		fn := k.subs[p.key]
		if fn == nil {
			continue
		}
		fn(p.a0, p.a1, p.a2)
		return true
	}
}

func (k *Kernel) post(driver, event, a0, a1, a2 uint32) {
	p := pendingUpcall{key: subKey{driver: driver, event: event}, a0: a0, a1: a1, a2: a2}
	if !k.pending.push(p) {
		k.dropped++
	}
}

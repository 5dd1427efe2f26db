package kernel

import (
	"testing"

	"github.com/tock/design-explorations/syscalls"
)

type stubCapsule struct {
	allowRC   syscalls.ErrorCode
	allowed   int
	onCommand func(env *Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode)
}

func (s *stubCapsule) Command(env *Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
	if s.onCommand != nil {
		return s.onCommand(env, op, arg0, arg1)
	}
	return 0, syscalls.ErrNoSupport
}

func (s *stubCapsule) Allow(env *Env, buffer uint32, mode syscalls.AllowMode, size int) syscalls.ErrorCode {
	s.allowed++
	return s.allowRC
}

type tickStub struct {
	stubCapsule
	onTick func(env *Env, now uint64)
}

func (s *tickStub) Tick(env *Env, now uint64) {
	if s.onTick != nil {
		s.onTick(env, now)
	}
}

func TestAllowUnknownDriver(t *testing.T) {
	k := New()
	id := syscalls.AllowID{Driver: 7, Buffer: 0}
	if rc := k.Allow(id, syscalls.AllowRW, make([]byte, 4)); rc != syscalls.ErrNoDevice {
		t.Fatalf("expected ErrNoDevice, got %s", rc)
	}
	// Revoking under an unknown driver must stay silent.
	k.Unallow(id, syscalls.AllowRW)
}

func TestAllowRegisterAndRevoke(t *testing.T) {
	k := New()
	c := &stubCapsule{}
	k.AddCapsule(1, c)
	env := k.capsules[1].env

	id := syscalls.AllowID{Driver: 1, Buffer: 1}
	region := []byte("hello")
	if rc := k.Allow(id, syscalls.AllowRO, region); rc != syscalls.ErrNone {
		t.Fatalf("allow: %s", rc)
	}
	got, ok := env.Grant(1, syscalls.AllowRO)
	if !ok || &got[0] != &region[0] {
		t.Fatal("grant must expose the shared region")
	}
	if _, ok := env.Grant(1, syscalls.AllowRW); ok {
		t.Fatal("grant must not be visible under the wrong mode")
	}

	k.Unallow(id, syscalls.AllowRO)
	if _, ok := env.Grant(1, syscalls.AllowRO); ok {
		t.Fatal("grant must be gone after unallow")
	}
	// Idempotent.
	k.Unallow(id, syscalls.AllowRO)
}

func TestAllowReplaceSwaps(t *testing.T) {
	k := New()
	c := &stubCapsule{}
	k.AddCapsule(1, c)
	env := k.capsules[1].env

	id := syscalls.AllowID{Driver: 1, Buffer: 0}
	first := make([]byte, 8)
	second := make([]byte, 8)
	if rc := k.Allow(id, syscalls.AllowRW, first); rc != syscalls.ErrNone {
		t.Fatalf("allow first: %s", rc)
	}
	if rc := k.Allow(id, syscalls.AllowRW, second); rc != syscalls.ErrNone {
		t.Fatalf("allow second: %s", rc)
	}
	got, ok := env.Grant(0, syscalls.AllowRW)
	if !ok || &got[0] != &second[0] {
		t.Fatal("replacement must swap the grant to the new region")
	}
}

func TestCapsuleVetoesAllow(t *testing.T) {
	k := New()
	c := &stubCapsule{allowRC: syscalls.ErrSize}
	k.AddCapsule(1, c)
	env := k.capsules[1].env

	id := syscalls.AllowID{Driver: 1, Buffer: 0}
	if rc := k.Allow(id, syscalls.AllowRW, make([]byte, 4)); rc != syscalls.ErrSize {
		t.Fatalf("expected pass-through ErrSize, got %s", rc)
	}
	if _, ok := env.Grant(0, syscalls.AllowRW); ok {
		t.Fatal("vetoed grant must not be registered")
	}
	// Revocation bypasses the veto.
	if rc := k.Allow(id, syscalls.AllowRW, nil); rc != syscalls.ErrNone {
		t.Fatalf("revoke: %s", rc)
	}
}

func TestUpcallsDeliveredOnlyAtYield(t *testing.T) {
	k := New()
	c := &stubCapsule{}
	c.onCommand = func(env *Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
		env.Post(0, op, arg0, arg1)
		return 0, syscalls.ErrNone
	}
	k.AddCapsule(1, c)

	var got [][3]uint32
	rc := k.Subscribe(1, 0, func(a0, a1, a2 uint32) {
		got = append(got, [3]uint32{a0, a1, a2})
	})
	if rc != syscalls.ErrNone {
		t.Fatalf("subscribe: %s", rc)
	}

	if _, rc := k.Command(1, 10, 1, 0); rc != syscalls.ErrNone {
		t.Fatalf("command: %s", rc)
	}
	if _, rc := k.Command(1, 20, 2, 0); rc != syscalls.ErrNone {
		t.Fatalf("command: %s", rc)
	}
	if len(got) != 0 {
		t.Fatal("upcalls must not run before yield")
	}

	k.Yield()
	if len(got) != 2 {
		t.Fatalf("expected 2 upcalls, got %d", len(got))
	}
	if got[0] != [3]uint32{10, 1, 0} || got[1] != [3]uint32{20, 2, 0} {
		t.Fatalf("upcalls out of order: %v", got)
	}
}

func TestUnsubscribeDiscards(t *testing.T) {
	k := New()
	c := &stubCapsule{}
	c.onCommand = func(env *Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
		env.Post(0, 0, 0, 0)
		return 0, syscalls.ErrNone
	}
	k.AddCapsule(1, c)

	fired := false
	k.Subscribe(1, 0, func(a0, a1, a2 uint32) { fired = true })
	k.Command(1, 0, 0, 0)
	k.Subscribe(1, 0, nil)
	k.Yield()
	if fired {
		t.Fatal("upcall must be discarded after unsubscribe")
	}
}

func TestSubscribeUnknownDriver(t *testing.T) {
	k := New()
	if rc := k.Subscribe(9, 0, func(a0, a1, a2 uint32) {}); rc != syscalls.ErrNoDevice {
		t.Fatalf("expected ErrNoDevice, got %s", rc)
	}
}

func TestCommandUnknownDriver(t *testing.T) {
	k := New()
	if _, rc := k.Command(9, 0, 0, 0); rc != syscalls.ErrNoDevice {
		t.Fatalf("expected ErrNoDevice, got %s", rc)
	}
}

func TestYieldWaitSelfTicks(t *testing.T) {
	k := New()
	c := &tickStub{}
	c.onTick = func(env *Env, now uint64) {
		if now == 3 {
			env.Post(0, uint32(now), 0, 0)
		}
	}
	k.AddCapsule(1, c)

	var fired uint32
	k.Subscribe(1, 0, func(a0, a1, a2 uint32) { fired = a0 })

	k.YieldWait()
	if fired != 3 {
		t.Fatalf("expected tick-3 upcall, got %d", fired)
	}
	if k.Ticks() != 3 {
		t.Fatalf("expected 3 ticks, got %d", k.Ticks())
	}
}

func TestPendingOverflowCounted(t *testing.T) {
	k := New()
	c := &stubCapsule{}
	c.onCommand = func(env *Env, op, arg0, arg1 uint32) (uint32, syscalls.ErrorCode) {
		env.Post(0, arg0, 0, 0)
		return 0, syscalls.ErrNone
	}
	k.AddCapsule(1, c)
	k.Subscribe(1, 0, func(a0, a1, a2 uint32) {})

	for i := 0; i < pendingSlots+5; i++ {
		k.Command(1, 0, uint32(i), 0)
	}
	if k.Dropped() != 5 {
		t.Fatalf("expected 5 dropped completions, got %d", k.Dropped())
	}
}

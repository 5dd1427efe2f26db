package allow

import (
	"testing"

	"github.com/tock/design-explorations/syscalls"
)

func TestDoubleBufferStartAdvance(t *testing.T) {
	tr := newFakeTransport()
	d := NewDoubleBuffer(tr, testID, 8, syscalls.AllowRW)

	if d.Active() != SideNone {
		t.Fatalf("expected SideNone before start, got %s", d.Active())
	}
	if rc := d.Start(); rc != syscalls.ErrNone {
		t.Fatalf("start: %s", rc)
	}
	if d.Active() != SideA {
		t.Fatalf("expected SideA after start, got %s", d.Active())
	}
	if d.a.State() != SharedRW || d.b.State() != Unshared {
		t.Fatalf("states after start: a=%s b=%s", d.a.State(), d.b.State())
	}

	first, rc := d.Advance()
	if rc != syscalls.ErrNone {
		t.Fatalf("advance: %s", rc)
	}
	if d.Active() != SideB {
		t.Fatalf("expected SideB, got %s", d.Active())
	}
	if d.a.State() != Unshared || d.b.State() != SharedRW {
		t.Fatalf("states after advance: a=%s b=%s", d.a.State(), d.b.State())
	}
	if &first[0] != &d.a.data[0] {
		t.Fatal("first advance must return side A's storage")
	}

	second, rc := d.Advance()
	if rc != syscalls.ErrNone {
		t.Fatalf("advance: %s", rc)
	}
	if d.Active() != SideA {
		t.Fatalf("expected SideA, got %s", d.Active())
	}
	if &second[0] != &d.b.data[0] {
		t.Fatal("second advance must return side B's storage")
	}
	if &first[0] == &second[0] {
		t.Fatal("advances must alternate storages")
	}
}

func TestDoubleBufferAdvanceBeforeStart(t *testing.T) {
	tr := newFakeTransport()
	d := NewDoubleBuffer(tr, testID, 8, syscalls.AllowRW)

	out, rc := d.Advance()
	if rc != syscalls.ErrOff {
		t.Fatalf("expected ErrOff, got %s", rc)
	}
	if out != nil {
		t.Fatal("no storage must be returned before start")
	}
	if tr.allows != 0 {
		t.Fatal("advance before start must not reach the kernel")
	}
}

func TestDoubleBufferStartTwice(t *testing.T) {
	tr := newFakeTransport()
	d := NewDoubleBuffer(tr, testID, 8, syscalls.AllowRW)

	if rc := d.Start(); rc != syscalls.ErrNone {
		t.Fatalf("start: %s", rc)
	}
	if rc := d.Start(); rc != syscalls.ErrAlready {
		t.Fatalf("expected ErrAlready, got %s", rc)
	}
}

func TestDoubleBufferStartRejected(t *testing.T) {
	tr := newFakeTransport()
	tr.allowErr = syscalls.ErrNoDevice
	d := NewDoubleBuffer(tr, testID, 8, syscalls.AllowRW)

	if rc := d.Start(); rc != syscalls.ErrNoDevice {
		t.Fatalf("expected pass-through ErrNoDevice, got %s", rc)
	}
	if d.Active() != SideNone {
		t.Fatalf("stream must stay stopped, got %s", d.Active())
	}
}

func TestDoubleBufferAdvanceRejected(t *testing.T) {
	tr := newFakeTransport()
	d := NewDoubleBuffer(tr, testID, 8, syscalls.AllowRW)

	if rc := d.Start(); rc != syscalls.ErrNone {
		t.Fatalf("start: %s", rc)
	}
	tr.allowErr = syscalls.ErrNoMem
	out, rc := d.Advance()
	if rc != syscalls.ErrNoMem {
		t.Fatalf("expected pass-through ErrNoMem, got %s", rc)
	}
	if out != nil {
		t.Fatal("no storage must be returned on a failed advance")
	}
	if d.Active() != SideA {
		t.Fatalf("active side must not move on failure, got %s", d.Active())
	}
	if d.a.State() != SharedRW {
		t.Fatalf("active side must stay shared, got %s", d.a.State())
	}
	if d.b.State() != Unshared {
		t.Fatalf("idle side must stay unshared, got %s", d.b.State())
	}

	// The stream is still usable once the kernel recovers.
	tr.allowErr = syscalls.ErrNone
	if _, rc := d.Advance(); rc != syscalls.ErrNone {
		t.Fatalf("advance after recovery: %s", rc)
	}
	if d.Active() != SideB {
		t.Fatalf("expected SideB, got %s", d.Active())
	}
}

func TestDoubleBufferClose(t *testing.T) {
	tr := newFakeTransport()
	d := NewDoubleBuffer(tr, testID, 8, syscalls.AllowRW)

	if rc := d.Start(); rc != syscalls.ErrNone {
		t.Fatalf("start: %s", rc)
	}
	d.Close()
	if d.Active() != SideNone {
		t.Fatalf("expected SideNone after close, got %s", d.Active())
	}
	if len(tr.grants) != 0 {
		t.Fatal("close must revoke the active grant")
	}
	if tr.unallows != 1 {
		t.Fatalf("expected exactly one unshare, got %d", tr.unallows)
	}
}

func TestDoubleBufferExactlyOneSideShared(t *testing.T) {
	tr := newFakeTransport()
	d := NewDoubleBuffer(tr, testID, 8, syscalls.AllowRW)

	if rc := d.Start(); rc != syscalls.ErrNone {
		t.Fatalf("start: %s", rc)
	}
	for i := 0; i < 6; i++ {
		sharedA := d.a.Shared()
		sharedB := d.b.Shared()
		if sharedA == sharedB {
			t.Fatalf("step %d: exactly one side must be shared (a=%v b=%v)", i, sharedA, sharedB)
		}
		if _, rc := d.Advance(); rc != syscalls.ErrNone {
			t.Fatalf("advance %d: %s", i, rc)
		}
	}
}

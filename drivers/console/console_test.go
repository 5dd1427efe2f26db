package console

import (
	"bytes"
	"testing"

	capcon "github.com/tock/design-explorations/capsules/console"
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

func newStack() (*kernel.Kernel, *bytes.Buffer) {
	var out bytes.Buffer
	k := kernel.New()
	k.AddCapsule(capcon.DriverNum, capcon.New(&out))
	return k, &out
}

func TestPrint(t *testing.T) {
	k, out := newStack()
	c := New(k, 64, nil)

	if rc := c.Println("hello"); rc != syscalls.ErrNone {
		t.Fatalf("Println: %v", rc)
	}
	if out.String() != "hello\n" {
		t.Fatalf("wrote %q", out.String())
	}
	if c.Busy() {
		t.Fatal("still busy after a synchronous print")
	}
}

func TestWriteCompletion(t *testing.T) {
	k, out := newStack()

	var doneN int
	c := New(k, 64, func(n int) { doneN = n })

	if rc := c.Write([]byte("abc")); rc != syscalls.ErrNone {
		t.Fatalf("Write: %v", rc)
	}
	if !c.Busy() {
		t.Fatal("expected an in-flight write")
	}
	if rc := c.Write([]byte("x")); rc != syscalls.ErrBusy {
		t.Fatalf("second write: expected ErrBusy, got %v", rc)
	}

	k.Yield()
	if c.Busy() {
		t.Fatal("busy after completion")
	}
	if doneN != 3 {
		t.Fatalf("completion reported %d bytes", doneN)
	}
	if out.String() != "abc" {
		t.Fatalf("wrote %q", out.String())
	}

	// The buffer is back; the next write goes through.
	if rc := c.Write([]byte("y")); rc != syscalls.ErrNone {
		t.Fatalf("write after completion: %v", rc)
	}
}

func TestWriteTooLong(t *testing.T) {
	k, _ := newStack()
	c := New(k, 4, nil)

	if rc := c.Write([]byte("hello")); rc != syscalls.ErrSize {
		t.Fatalf("expected ErrSize, got %v", rc)
	}
	if c.Busy() {
		t.Fatal("busy after a rejected write")
	}
}

func TestWriteNoDriver(t *testing.T) {
	k := kernel.New()
	c := New(k, 16, nil)

	if rc := c.Write([]byte("a")); rc != syscalls.ErrNoDevice {
		t.Fatalf("expected ErrNoDevice, got %v", rc)
	}
	// The failed subscribe must not leave the buffer shared.
	if rc := c.Write([]byte("a")); rc != syscalls.ErrNoDevice {
		t.Fatalf("retry: expected ErrNoDevice, got %v", rc)
	}
}

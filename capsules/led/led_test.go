package led

import (
	"testing"

	"github.com/tock/design-explorations/hal"
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

type fakeLED struct {
	on bool
}

func (l *fakeLED) High() { l.on = true }
func (l *fakeLED) Low()  { l.on = false }

func newLEDKernel(n int) (*kernel.Kernel, []*fakeLED, *LEDs) {
	fakes := make([]*fakeLED, n)
	leds := make([]hal.LED, n)
	for i := range fakes {
		fakes[i] = &fakeLED{}
		leds[i] = fakes[i]
	}
	drv := New(leds)
	k := kernel.New()
	k.AddCapsule(DriverNum, drv)
	return k, fakes, drv
}

func TestCount(t *testing.T) {
	k, _, _ := newLEDKernel(3)
	n, rc := k.Command(DriverNum, OpCount, 0, 0)
	if rc != syscalls.ErrNone || n != 3 {
		t.Fatalf("OpCount = %d, %v", n, rc)
	}
}

func TestOnOffToggle(t *testing.T) {
	k, fakes, drv := newLEDKernel(2)

	if _, rc := k.Command(DriverNum, OpOn, 1, 0); rc != syscalls.ErrNone {
		t.Fatalf("OpOn: %v", rc)
	}
	if !fakes[1].on || fakes[0].on {
		t.Fatal("OpOn drove the wrong pin")
	}
	if !drv.Lit(1) {
		t.Fatal("Lit out of sync")
	}

	if _, rc := k.Command(DriverNum, OpToggle, 1, 0); rc != syscalls.ErrNone {
		t.Fatalf("OpToggle: %v", rc)
	}
	if fakes[1].on {
		t.Fatal("toggle did not turn the pin off")
	}

	k.Command(DriverNum, OpToggle, 0, 0)
	if !fakes[0].on {
		t.Fatal("toggle did not turn the pin on")
	}

	if _, rc := k.Command(DriverNum, OpOff, 0, 0); rc != syscalls.ErrNone {
		t.Fatalf("OpOff: %v", rc)
	}
	if fakes[0].on {
		t.Fatal("OpOff left the pin on")
	}
}

func TestBadIndex(t *testing.T) {
	k, _, _ := newLEDKernel(1)
	if _, rc := k.Command(DriverNum, OpOn, 5, 0); rc != syscalls.ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", rc)
	}
}

func TestUnknownCommand(t *testing.T) {
	k, _, _ := newLEDKernel(1)
	if _, rc := k.Command(DriverNum, 42, 0, 0); rc != syscalls.ErrNoSupport {
		t.Fatalf("expected ErrNoSupport, got %v", rc)
	}
}

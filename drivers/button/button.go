// Package button is the userspace button client.
package button

import "github.com/tock/design-explorations/syscalls"

const (
	driverNum uint32 = 0x3

	opCount   uint32 = 0
	opEnable  uint32 = 1
	opDisable uint32 = 2
	opRead    uint32 = 3

	eventChanged uint32 = 0
)

// Buttons reports button level changes. Changes on interrupt-enabled buttons
// arrive at yield points, either through the onChange callback or through
// WaitPress.
type Buttons struct {
	t        syscalls.Transport
	onChange func(i int, pressed bool)

	subscribed bool
	gotPress   bool
	lastIndex  int
}

// New creates a button client. onChange may be nil.
func New(t syscalls.Transport, onChange func(i int, pressed bool)) *Buttons {
	return &Buttons{t: t, onChange: onChange}
}

func (b *Buttons) Count() (int, syscalls.ErrorCode) {
	n, rc := b.t.Command(driverNum, opCount, 0, 0)
	return int(n), rc
}

// Enable turns on change reporting for button i.
func (b *Buttons) Enable(i int) syscalls.ErrorCode {
	if !b.subscribed {
		if rc := b.t.Subscribe(driverNum, eventChanged, b.changed); rc != syscalls.ErrNone {
			return rc
		}
		b.subscribed = true
	}
	_, rc := b.t.Command(driverNum, opEnable, uint32(i), 0)
	return rc
}

func (b *Buttons) Disable(i int) syscalls.ErrorCode {
	_, rc := b.t.Command(driverNum, opDisable, uint32(i), 0)
	return rc
}

// Read returns the current level of button i without waiting.
func (b *Buttons) Read(i int) (bool, syscalls.ErrorCode) {
	v, rc := b.t.Command(driverNum, opRead, uint32(i), 0)
	return v != 0, rc
}

// WaitPress yields until any enabled button is pressed and returns its index.
func (b *Buttons) WaitPress() (int, syscalls.ErrorCode) {
	if !b.subscribed {
		return 0, syscalls.ErrOff
	}
	b.gotPress = false
	for !b.gotPress {
		b.t.YieldWait()
	}
	return b.lastIndex, syscalls.ErrNone
}

func (b *Buttons) changed(a0, a1, a2 uint32) {
	pressed := a1 != 0
	if pressed {
		b.gotPress = true
		b.lastIndex = int(a0)
	}
	if b.onChange != nil {
		b.onChange(int(a0), pressed)
	}
}

// Package allow manages the lifecycle of buffers lent to the kernel.
//
// The kernel reads or writes shared buffers asynchronously, so while a buffer
// is lent out the application must not touch its storage, and the storage must
// stay alive and in place until the grant is revoked. Buffer is the single
// enforcement point for both rules: it owns its storage, hands out access only
// while unshared, and revokes the grant before the storage can be reused.
//
// DoubleBuffer composes two Buffers for continuous streaming: one side is
// always lent to the kernel while the other is available to the application.
package allow

import "github.com/tock/design-explorations/syscalls"

// State tracks whether a buffer is currently lent to the kernel, and with
// which access mode.
type State uint8

const (
	Unshared State = iota
	SharedRO
	SharedRW
)

func (s State) String() string {
	switch s {
	case Unshared:
		return "unshared"
	case SharedRO:
		return "shared ro"
	case SharedRW:
		return "shared rw"
	default:
		return "invalid"
	}
}

func stateFor(mode syscalls.AllowMode) State {
	if mode == syscalls.AllowRO {
		return SharedRO
	}
	return SharedRW
}

func modeFor(state State) syscalls.AllowMode {
	if state == SharedRO {
		return syscalls.AllowRO
	}
	return syscalls.AllowRW
}

package syscalls

// ErrorCode is a kernel return code. Zero means success; failures are small
// positive integers with kernel-assigned meanings. Codes travel through the
// userspace layers verbatim, never reinterpreted.
type ErrorCode uint32

const (
	ErrNone      ErrorCode = 0
	ErrFail      ErrorCode = 1
	ErrBusy      ErrorCode = 2
	ErrAlready   ErrorCode = 3
	ErrOff       ErrorCode = 4
	ErrReserve   ErrorCode = 5
	ErrInvalid   ErrorCode = 6
	ErrSize      ErrorCode = 7
	ErrCancel    ErrorCode = 8
	ErrNoMem     ErrorCode = 9
	ErrNoSupport ErrorCode = 10
	ErrNoDevice  ErrorCode = 11
)

func (e ErrorCode) String() string {
	switch e {
	case ErrNone:
		return "ok"
	case ErrFail:
		return "unspecified failure"
	case ErrBusy:
		return "busy"
	case ErrAlready:
		return "already in progress"
	case ErrOff:
		return "powered off"
	case ErrReserve:
		return "reservation required"
	case ErrInvalid:
		return "invalid argument"
	case ErrSize:
		return "size exceeded"
	case ErrCancel:
		return "cancelled"
	case ErrNoMem:
		return "out of memory"
	case ErrNoSupport:
		return "operation not supported"
	case ErrNoDevice:
		return "no such device"
	default:
		return "unknown"
	}
}

// Error makes an ErrorCode usable as an error value where one is needed
// (HAL edges, demo binaries). Library code compares codes directly.
func (e ErrorCode) Error() string { return e.String() }

// Err converts a code to a plain error: nil for ErrNone, the code otherwise.
func (e ErrorCode) Err() error {
	if e == ErrNone {
		return nil
	}
	return e
}

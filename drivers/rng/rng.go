// Package rng is the userspace entropy client: a one-shot Fetch and a
// continuous double-buffered Stream.
package rng

import (
	"github.com/tock/design-explorations/allow"
	"github.com/tock/design-explorations/syscalls"
)

const (
	driverNum  uint32 = 0x40001
	fillBuffer uint32 = 0

	opGetBytes uint32 = 1
	eventDone  uint32 = 0
)

var fillID = syscalls.AllowID{Driver: driverNum, Buffer: fillBuffer}

// Fetch asks the kernel for n random bytes, yielding until the fill has
// completed, and returns a fresh slice the caller owns.
func Fetch(t syscalls.Transport, n int) ([]byte, syscalls.ErrorCode) {
	buf := allow.New(t, fillID, n)
	defer buf.Close()

	done := false
	if rc := t.Subscribe(driverNum, eventDone, func(a0, a1, a2 uint32) {
		done = true
	}); rc != syscalls.ErrNone {
		return nil, rc
	}
	defer t.Subscribe(driverNum, eventDone, nil)

	if rc := buf.Share(syscalls.AllowRW); rc != syscalls.ErrNone {
		return nil, rc
	}
	if _, rc := t.Command(driverNum, opGetBytes, uint32(n), 0); rc != syscalls.ErrNone {
		return nil, rc
	}
	for !done {
		t.YieldWait()
	}

	out := make([]byte, n)
	copy(out, buf.Reclaim())
	return out, syscalls.ErrNone
}

// Stream receives entropy continuously: while the application consumes one
// chunk, the kernel fills the other.
type Stream struct {
	t     syscalls.Transport
	d     *allow.DoubleBuffer
	chunk int
	ready bool
}

// NewStream creates a stopped stream producing chunk-byte slices.
func NewStream(t syscalls.Transport, chunk int) *Stream {
	return &Stream{
		t:     t,
		d:     allow.NewDoubleBuffer(t, fillID, chunk, syscalls.AllowRW),
		chunk: chunk,
	}
}

// Start lends the first side to the kernel and requests the first fill.
func (s *Stream) Start() syscalls.ErrorCode {
	if rc := s.t.Subscribe(driverNum, eventDone, s.fillDone); rc != syscalls.ErrNone {
		return rc
	}
	if rc := s.d.Start(); rc != syscalls.ErrNone {
		return rc
	}
	if _, rc := s.t.Command(driverNum, opGetBytes, uint32(s.chunk), 0); rc != syscalls.ErrNone {
		s.d.Close()
		return rc
	}
	return syscalls.ErrNone
}

// Next yields until the in-flight fill completes, swaps the sides, requests
// the next fill and returns the filled chunk. The returned slice belongs to
// the stream and is valid until the next call to Next.
func (s *Stream) Next() ([]byte, syscalls.ErrorCode) {
	for !s.ready {
		s.t.YieldWait()
	}
	s.ready = false
	out, rc := s.d.Advance()
	if rc != syscalls.ErrNone {
		return nil, rc
	}
	if _, rc := s.t.Command(driverNum, opGetBytes, uint32(s.chunk), 0); rc != syscalls.ErrNone {
		// The chunk is valid but no refill is running; the caller decides
		// whether to retry or close.
		return out, rc
	}
	return out, syscalls.ErrNone
}

// Close revokes the active grant and unsubscribes.
func (s *Stream) Close() {
	s.d.Close()
	s.t.Subscribe(driverNum, eventDone, nil)
	s.ready = false
}

func (s *Stream) fillDone(a0, a1, a2 uint32) {
	s.ready = true
}

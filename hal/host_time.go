//go:build !tinygo

package hal

import "time"

// hostTime converts wall-clock time into a millisecond tick stream. Ticks
// are produced when step runs, so time only advances while the runner loop
// is alive.
type hostTime struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

const hostTickDur = time.Millisecond

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step emits one tick per elapsed millisecond since the previous call.
func (t *hostTime) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.emit(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / hostTickDur)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % hostTickDur
	t.emit(ticks)
}

func (t *hostTime) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}

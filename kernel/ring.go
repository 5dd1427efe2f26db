package kernel

// pendingSlots bounds the completion backlog between yield points. A
// cooperative program yields often enough that 32 is generous; overflow is
// counted rather than blocking, since capsules must never block.
const pendingSlots = 32

type pendingUpcall struct {
	key subKey
	a0  uint32
	a1  uint32
	a2  uint32
}

// upcallRing is a fixed-slot FIFO. Head and tail wrap through uint8
// arithmetic, so pendingSlots must stay below 256.
type upcallRing struct {
	head  uint8
	tail  uint8
	slots [pendingSlots]pendingUpcall
}

func (r *upcallRing) push(p pendingUpcall) bool {
	if r.head-r.tail >= pendingSlots {
		return false
	}
	r.slots[r.head%pendingSlots] = p
	r.head++
	return true
}

func (r *upcallRing) pop() (pendingUpcall, bool) {
	if r.tail == r.head {
		return pendingUpcall{}, false
	}
	p := r.slots[r.tail%pendingSlots]
	r.tail++
	return p, true
}

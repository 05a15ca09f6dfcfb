package hub

import (
	"sync"

	"github.com/rickgao/chainfeed/internal/model"
)

// ring is a thread-safe fixed-capacity FIFO that drops its oldest entry
// when full. The producer never blocks; a slow consumer lags instead.
type ring struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []model.Payload
	head     int // read position
	tail     int // write position
	count    int
	capacity int
	closed   bool

	// Stats
	totalPushed int64
	totalPopped int64
	dropped     int64
}

// newRing creates a ring with the given capacity.
func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	r := &ring{
		buf:      make([]model.Payload, capacity),
		capacity: capacity,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// push adds a payload, evicting the oldest entry when the ring is full.
// Returns true if an entry was dropped. Pushing to a closed ring is a no-op.
func (r *ring) push(p model.Payload) (droppedOldest bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	if r.count == r.capacity {
		// Evict oldest: the subscriber has lagged past its buffer.
		r.head = (r.head + 1) % r.capacity
		r.count--
		r.dropped++
		droppedOldest = true
	}

	r.buf[r.tail] = p
	r.tail = (r.tail + 1) % r.capacity
	r.count++
	r.totalPushed++

	// Signal waiting receiver
	r.cond.Signal()
	return droppedOldest
}

// pop removes and returns the oldest payload. Blocks until a payload is
// available or the ring is closed. Returns false once closed and drained.
func (r *ring) pop() (model.Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.count == 0 && !r.closed {
		r.cond.Wait()
	}

	if r.count == 0 && r.closed {
		return model.Payload{}, false
	}

	p := r.buf[r.head]
	r.buf[r.head] = model.Payload{}
	r.head = (r.head + 1) % r.capacity
	r.count--
	r.totalPopped++

	return p, true
}

// close closes the ring. Waiting receivers drain remaining entries, then
// pop returns false. Idempotent.
func (r *ring) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.cond.Broadcast()
}

// stats returns a snapshot of ring counters.
func (r *ring) stats() RingStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RingStats{
		Count:       r.count,
		Capacity:    r.capacity,
		TotalPushed: r.totalPushed,
		TotalPopped: r.totalPopped,
		Dropped:     r.dropped,
	}
}

// RingStats is a snapshot of one subscription's buffer counters.
type RingStats struct {
	Count       int
	Capacity    int
	TotalPushed int64
	TotalPopped int64
	Dropped     int64
}

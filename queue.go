package eink

// pending is a region whose pixels were committed too recently and should be
// retried once the pulse window has passed.
type pending struct {
	rect       Rectangle
	retryAfter Tick
}

// queue is a fixed capacity FIFO ring of pending regions.
//
// Overflow: the oldest entry is overwritten when full.
type queue struct {
	entries []pending
	read    int // index of the front entry
	size    int
	dropped uint64
}

func newQueue(capacity int) *queue {
	return &queue{entries: make([]pending, capacity)}
}

func (q *queue) empty() bool {
	return q.size == 0
}

func (q *queue) len() int {
	return q.size
}

// push appends p. It returns false if the queue was full and the oldest entry
// had to be dropped to make room.
func (q *queue) push(p pending) bool {
	capacity := len(q.entries)
	if q.size == capacity {
		// The write cursor has caught up with the read cursor.
		q.entries[q.read] = p
		q.read = (q.read + 1) % capacity
		q.dropped++
		return false
	}
	q.entries[(q.read+q.size)%capacity] = p
	q.size++
	return true
}

func (q *queue) front() (pending, bool) {
	if q.size == 0 {
		return pending{}, false
	}
	return q.entries[q.read], true
}

func (q *queue) pop() {
	if q.size == 0 {
		return
	}
	q.entries[q.read] = pending{}
	q.read = (q.read + 1) % len(q.entries)
	q.size--
}

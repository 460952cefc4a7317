package queue

import "sync/atomic"

// SPSC is a lock-free ring for exactly one producer and one consumer goroutine.
// The capacity is rounded up to a power of two.
type SPSC[T any] struct {
	buf  []T
	mask uint64

	_    [56]byte
	head atomic.Uint64 // next slot to read, owned by the consumer
	_    [56]byte
	tail atomic.Uint64 // next slot to write, owned by the producer
	_    [56]byte

	dropped atomic.Uint64
}

// NewSPSC returns a queue holding at least capacity items.
func NewSPSC[T any](capacity int) *SPSC[T] {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &SPSC[T]{
		buf:  make([]T, n),
		mask: uint64(n - 1), //nolint:gosec // n is positive
	}
}

// Push appends v. It returns false and counts a drop when the queue is full.
// Producer only.
func (q *SPSC[T]) Push(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		q.dropped.Add(1)
		return false
	}
	q.buf[tail&q.mask] = v
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest item. Consumer only.
func (q *SPSC[T]) Pop() (T, bool) {
	var zero T
	head := q.head.Load()
	if head == q.tail.Load() {
		return zero, false
	}
	v := q.buf[head&q.mask]
	q.buf[head&q.mask] = zero
	q.head.Store(head + 1)
	return v, true
}

// Drain pops every queued item into fn. Consumer only.
func (q *SPSC[T]) Drain(fn func(T)) int {
	n := 0
	for {
		v, ok := q.Pop()
		if !ok {
			return n
		}
		fn(v)
		n++
	}
}

// Len returns the number of queued items. It is exact only when called from
// the producer or the consumer while the other side is idle.
func (q *SPSC[T]) Len() int {
	return int(q.tail.Load() - q.head.Load()) //nolint:gosec // bounded by capacity
}

// Cap returns the capacity.
func (q *SPSC[T]) Cap() int { return len(q.buf) }

// Dropped returns the number of rejected pushes.
func (q *SPSC[T]) Dropped() uint64 { return q.dropped.Load() }

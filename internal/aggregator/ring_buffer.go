package aggregator

// RingBuffer is a fixed-capacity FIFO buffer. When full, Push overwrites
// the oldest element. It is not safe for concurrent use; HistoryStore
// guards each buffer with its own lock.
type RingBuffer[T any] struct {
	data  []T
	head  int // index of the oldest element
	count int
}

// NewRingBuffer creates a ring buffer holding at most capacity elements
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// Push appends item at the tail, evicting the head first when full.
// It reports whether an element was evicted.
func (r *RingBuffer[T]) Push(item T) bool {
	capacity := len(r.data)
	if r.count == capacity {
		r.data[r.head] = item
		r.head = (r.head + 1) % capacity
		return true
	}

	r.data[(r.head+r.count)%capacity] = item
	r.count++
	return false
}

// Slice returns a copy of the contents, oldest first
func (r *RingBuffer[T]) Slice() []T {
	out := make([]T, r.count)
	if r.count == 0 {
		return out
	}

	n := copy(out, r.data[r.head:min(r.head+r.count, len(r.data))])
	copy(out[n:], r.data[:r.count-n])
	return out
}

// Len returns the number of stored elements
func (r *RingBuffer[T]) Len() int {
	return r.count
}

// Cap returns the maximum number of elements
func (r *RingBuffer[T]) Cap() int {
	return len(r.data)
}

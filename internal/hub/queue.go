package hub

import "sync"

// Queue is a Subscriber backed by a bounded FIFO channel.
// Messages that do not fit are dropped rather than blocking the publisher.
type Queue struct {
	id string
	ch chan Message

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue subscriber with the given buffer size
func NewQueue(id string, size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{id: id, ch: make(chan Message, size)}
}

// ID returns the subscriber ID
func (q *Queue) ID() string {
	return q.id
}

// Deliver enqueues msg without blocking
func (q *Queue) Deliver(msg Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	select {
	case q.ch <- msg:
		return true
	default:
		return false
	}
}

// Messages returns the receive side of the queue; it is closed by Close
func (q *Queue) Messages() <-chan Message {
	return q.ch
}

// Close stops accepting messages; it is safe to call more than once
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

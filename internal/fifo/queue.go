// Package fifo provides a strict FIFO mutual-exclusion queue. It replaces
// ad hoc chained continuations with an explicit ticket queue so that timeout
// semantics stay auditable.
package fifo

import (
	"context"
	"sync"
)

// Queue admits callers strictly in the order they called Acquire. At most one
// caller holds the queue at any instant.
type Queue struct {
	mu   sync.Mutex
	tail chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Acquire joins the tail of the queue and blocks until every earlier caller
// has released, or until ctx is done. On success the returned release
// function must be called exactly once. A caller that gives up on ctx does
// not poison the queue: its slot is handed through to the next waiter as soon
// as its predecessor releases.
func (q *Queue) Acquire(ctx context.Context) (func(), error) {
	q.mu.Lock()
	prev := q.tail
	slot := make(chan struct{})
	q.tail = slot
	q.mu.Unlock()

	release := func() { close(slot) }

	if prev == nil {
		return release, nil
	}

	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		// Pass the predecessor's release through to our successor.
		go func() {
			<-prev
			close(slot)
		}()
		return nil, ctx.Err()
	}
}

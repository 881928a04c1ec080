// Package bus provides the FIFO message queue feeding the execution client's
// processing loop. Pushes never block the producer; Pop blocks a single
// consumer until an item, close, or context cancellation arrives.
package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/chadury2021/nautilus-trader-s/internal/message"
)

// ErrQueueClosed is returned once a closed queue has been fully drained.
var ErrQueueClosed = errors.New("bus: queue closed")

// ErrQueueFull is returned by Push when a bounded queue is at capacity.
var ErrQueueFull = errors.New("bus: queue full")

// Queue is a FIFO of messages shared between producer goroutines and exactly
// one consumer. A capacity <= 0 makes the queue unbounded; an unbounded queue
// grows without limit under sustained overload, which callers accept by
// configuring it so.
type Queue struct {
	mu       sync.Mutex
	items    []message.Message
	capacity int
	closed   bool
	wake     chan struct{}
}

// NewQueue constructs a queue with the given capacity (<= 0 for unbounded).
func NewQueue(capacity int) *Queue {
	return &Queue{
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Push appends an item without blocking. It fails with ErrQueueClosed after
// Close and ErrQueueFull when a bounded queue is at capacity.
func (q *Queue) Push(msg message.Message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes and returns the oldest item, blocking while the queue is empty.
// It returns ErrQueueClosed once a closed queue is drained, or the context
// error on cancellation. Pop must be called from a single consumer goroutine.
func (q *Queue) Pop(ctx context.Context) (message.Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return msg, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		}
	}
}

// Len reports the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting pushes. Remaining items stay poppable; once drained,
// Pop returns ErrQueueClosed. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

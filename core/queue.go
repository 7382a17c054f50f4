package core

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by TrySend when the receiver is behind
var ErrQueueFull = errors.New("queue full")

// Default queue depths
const (
	CommandQueueSize  = 8
	MotionQueueSize   = 8
	SensorQueueSize   = 8
	HomeEventSize     = 8
	TransmitQueueSize = 8
)

// Queue is a bounded FIFO connecting two tasks.
// Senders never block; receivers block until a message or cancellation.
type Queue[T any] struct {
	name string
	ch   chan T
}

// NewQueue creates a queue holding at most size messages
func NewQueue[T any](name string, size int) *Queue[T] {
	if size < 1 {
		size = 1
	}
	return &Queue[T]{name: name, ch: make(chan T, size)}
}

// Name returns the queue name used in diagnostics
func (q *Queue[T]) Name() string {
	return q.name
}

// TrySend enqueues v without blocking
func (q *Queue[T]) TrySend(v T) error {
	select {
	case q.ch <- v:
		return nil
	default:
		return ErrQueueFull
	}
}

// MustSend enqueues v and reports a full queue as an invariant violation.
// Used where the queue depth is sized so that it cannot fill.
func (q *Queue[T]) MustSend(where string, v T) error {
	if err := q.TrySend(v); err != nil {
		return Invariant(where, "queue "+q.name+" full")
	}
	return nil
}

// Receive blocks until a message arrives or ctx is done
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive returns the next message if one is waiting
func (q *Queue[T]) TryReceive() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// C exposes the receive side for select loops
func (q *Queue[T]) C() <-chan T {
	return q.ch
}

// Len returns the number of queued messages
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue depth
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}

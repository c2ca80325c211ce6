// Package queue provides the bounded, ordered mailbox that feeds a single
// consumer goroutine.
package queue

import (
	"context"
	"sync"

	"github.com/okian/peloton/pkg/metrics"
)

const defaultCapacity = 64

// Queue is a non-blocking producer side plus a channel consumer side.
type Queue[T any] interface {
	// Enqueue adds m without blocking. It fails with ErrFull when the
	// mailbox is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, m T) error

	// Dequeue returns the channel messages are delivered on, in enqueue
	// order. It is closed once the mailbox is closed and drained.
	Dequeue() <-chan T

	// Len returns the number of waiting messages.
	Len() int

	// Close stops accepting messages.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// Mailbox implements Queue with a buffered channel.
type Mailbox[T any] struct {
	messages chan T
	capacity int

	mu     sync.RWMutex
	closed bool
}

// New creates a mailbox.
func New[T any](opts ...Option) *Mailbox[T] {
	o := options{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &Mailbox[T]{
		messages: make(chan T, o.capacity),
		capacity: o.capacity,
	}
}

// Enqueue adds m to the mailbox.
func (q *Mailbox[T]) Enqueue(ctx context.Context, m T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("mailbox", "closed")
		return ErrClosed
	}

	select {
	case q.messages <- m:
		return nil
	default:
		metrics.RecordMailboxRejection()
		metrics.RecordErrorByComponent("mailbox", "full")
		return ErrFull
	}
}

// Dequeue returns the delivery channel.
func (q *Mailbox[T]) Dequeue() <-chan T {
	return q.messages
}

// Len returns the number of waiting messages.
func (q *Mailbox[T]) Len() int {
	return len(q.messages)
}

// Cap returns the configured capacity.
func (q *Mailbox[T]) Cap() int {
	return q.capacity
}

// Close stops accepting messages. Waiting messages are still delivered.
func (q *Mailbox[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

// IsClosed reports whether the mailbox is closed.
func (q *Mailbox[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrFull   = errors.New("mailbox full")
	ErrClosed = errors.New("mailbox closed")
)

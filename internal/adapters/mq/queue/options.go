package queue

// Option applies a configuration option to a Mailbox.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity sets how many messages may wait before Enqueue refuses.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

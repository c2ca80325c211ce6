package worker

import (
	"github.com/okian/peloton/pkg/logger"
)

const defaultMailboxSize = 64

type sessionConfig struct {
	mailboxSize int
}

// Option applies a configuration option to a Session.
type Option func(*Session, *sessionConfig)

// WithName sets the session name used in logs, usually the view id.
func WithName(name string) Option {
	return func(s *Session, _ *sessionConfig) {
		if name != "" {
			s.name = name
		}
	}
}

// WithMailboxSize bounds the number of events waiting to be applied.
func WithMailboxSize(n int) Option {
	return func(_ *Session, c *sessionConfig) {
		if n > 0 {
			c.mailboxSize = n
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session, _ *sessionConfig) {
		if l != nil {
			s.logger = l
		}
	}
}

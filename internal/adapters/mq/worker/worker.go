// Package worker runs the per-view session: a single goroutine that owns the
// tooltip state and applies pointer events from a bounded mailbox in order.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/peloton/internal/adapters/mq/queue"
	"github.com/okian/peloton/internal/domain/interaction"
	"github.com/okian/peloton/pkg/logger"
	"github.com/okian/peloton/pkg/metrics"
)

const sessionShutdownTimeout = 5 * time.Second

var (
	// ErrBackpressure is returned when the mailbox is full.
	ErrBackpressure = errors.New("session mailbox full")
	// ErrClosed is returned once the session has been closed.
	ErrClosed = errors.New("session closed")
)

// Reducer applies one event to a state.
type Reducer interface {
	Apply(s interaction.State, e interaction.Event) (interaction.State, error)
}

type command struct {
	event interaction.Event
	reply chan result
}

type result struct {
	state interaction.State
	err   error
}

// Session serialises pointer events for one view.
type Session struct {
	name    string
	reducer Reducer
	mailbox *queue.Mailbox[command]

	mu    sync.RWMutex
	state interaction.State

	startOnce sync.Once
	started   bool
	done      chan struct{}

	logger logger.Logger
}

// NewSession creates a session. Call Start before sending events.
func NewSession(reducer Reducer, opts ...Option) *Session {
	s := &Session{
		name:    "session",
		reducer: reducer,
		done:    make(chan struct{}),
		logger:  logger.Get().Named("session"),
	}
	cfg := sessionConfig{mailboxSize: defaultMailboxSize}
	for _, opt := range opts {
		opt(s, &cfg)
	}
	s.mailbox = queue.New[command](queue.WithCapacity(cfg.mailboxSize))
	return s
}

// Start launches the session goroutine. It stops when ctx is done or the
// session is closed.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		go s.run(ctx)
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	inbox := s.mailbox.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-inbox:
			if !ok {
				return
			}
			cmd.reply <- s.process(ctx, cmd.event)
		}
	}
}

func (s *Session) process(ctx context.Context, ev interaction.Event) result {
	metrics.RecordPointerEvent(ev.Kind.String())

	s.mu.RLock()
	prev := s.state
	s.mu.RUnlock()

	next, err := s.reducer.Apply(prev, ev)
	if err != nil {
		metrics.RecordErrorByComponent("session", "apply")
		s.logger.Debug(ctx, "event rejected",
			logger.String("session", s.name),
			logger.String("kind", ev.Kind.String()),
			logger.Int("mark", ev.Mark),
			logger.Error(err),
		)
		return result{state: prev, err: err}
	}

	if prev.Shown != next.Shown {
		metrics.RecordTooltipTransition(prev.Name(), next.Name())
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return result{state: next}
}

// Send enqueues ev and waits for the state it produces.
func (s *Session) Send(ctx context.Context, ev interaction.Event) (interaction.State, error) {
	cmd := command{event: ev, reply: make(chan result, 1)}
	if err := s.mailbox.Enqueue(ctx, cmd); err != nil {
		switch {
		case errors.Is(err, queue.ErrFull):
			return s.Snapshot(), ErrBackpressure
		case errors.Is(err, queue.ErrClosed):
			return s.Snapshot(), ErrClosed
		}
		return s.Snapshot(), err
	}

	select {
	case r := <-cmd.reply:
		return r.state, r.err
	case <-s.done:
		// The loop may have answered just before exiting.
		select {
		case r := <-cmd.reply:
			return r.state, r.err
		default:
			return s.Snapshot(), ErrClosed
		}
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() interaction.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Pending returns the number of events waiting in the mailbox.
func (s *Session) Pending() int {
	return s.mailbox.Len()
}

// Shutdown stops accepting events and waits for queued ones to drain.
func (s *Session) Shutdown(ctx context.Context) error {
	if err := s.mailbox.Close(); err != nil {
		return err
	}

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "shutdown timed out", logger.String("session", s.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Close is Shutdown with a bounded wait.
func (s *Session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), sessionShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

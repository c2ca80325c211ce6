package worker_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	worker "github.com/okian/peloton/internal/adapters/mq/worker"
	"github.com/okian/peloton/internal/domain/interaction"
	logging "github.com/okian/peloton/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

var errBadMark = errors.New("bad mark")

// mockReducer records events and shows the tooltip at the pointer.
type mockReducer struct {
	mu      sync.Mutex
	seen    []interaction.Event
	gate    chan struct{}
	failOn  int
	entered atomic.Int32
}

func newMockReducer() *mockReducer {
	return &mockReducer{failOn: -1}
}

func (m *mockReducer) Apply(s interaction.State, e interaction.Event) (interaction.State, error) {
	m.entered.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	m.seen = append(m.seen, e)
	m.mu.Unlock()

	if e.Kind == interaction.Enter && e.Mark == m.failOn {
		return s, errBadMark
	}
	switch e.Kind {
	case interaction.Enter:
		return interaction.State{Shown: true, Mark: e.Mark, X: e.X, Y: e.Y}, nil
	case interaction.Move:
		if s.Shown {
			s.X, s.Y = e.X, e.Y
		}
		return s, nil
	}
	return interaction.State{}, nil
}

func (m *mockReducer) events() []interaction.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]interaction.Event(nil), m.seen...)
}

func TestSession(t *testing.T) {
	convey.Convey("Given a started session", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reducer := newMockReducer()
		s := worker.NewSession(reducer, worker.WithName("view-1"), worker.WithMailboxSize(4))
		s.Start(ctx)
		defer s.Close()

		convey.Convey("When events are sent one after another", func() {
			st, err := s.Send(ctx, interaction.Event{Kind: interaction.Enter, Mark: 2, X: 10, Y: 20})
			convey.So(err, convey.ShouldBeNil)
			convey.So(st.Shown, convey.ShouldBeTrue)

			st, err = s.Send(ctx, interaction.Event{Kind: interaction.Move, X: 30, Y: 40})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then each reply is the state after that event", func() {
				convey.So(st.X, convey.ShouldEqual, 30.0)
				convey.So(s.Snapshot(), convey.ShouldResemble, st)
			})

			convey.Convey("Then the reducer saw them in order", func() {
				evs := reducer.events()
				convey.So(evs, convey.ShouldHaveLength, 2)
				convey.So(evs[0].Kind, convey.ShouldEqual, interaction.Enter)
				convey.So(evs[1].Kind, convey.ShouldEqual, interaction.Move)
			})
		})

		convey.Convey("When the reducer rejects an event", func() {
			reducer.failOn = 9
			_, _ = s.Send(ctx, interaction.Event{Kind: interaction.Enter, Mark: 1})
			st, err := s.Send(ctx, interaction.Event{Kind: interaction.Enter, Mark: 9})

			convey.Convey("Then the error is returned and the state is kept", func() {
				convey.So(errors.Is(err, errBadMark), convey.ShouldBeTrue)
				convey.So(st.Mark, convey.ShouldEqual, 1)
				convey.So(s.Snapshot().Mark, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the session is closed", func() {
			convey.So(s.Close(), convey.ShouldBeNil)
			_, err := s.Send(ctx, interaction.Event{Kind: interaction.Leave})

			convey.So(errors.Is(err, worker.ErrClosed), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a session whose reducer is blocked", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reducer := newMockReducer()
		reducer.gate = make(chan struct{})
		s := worker.NewSession(reducer, worker.WithMailboxSize(1))
		s.Start(ctx)

		// One event is held by the reducer, one fills the mailbox.
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Send(ctx, interaction.Event{Kind: interaction.Enter, Mark: 0})
		}()
		for reducer.entered.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Send(ctx, interaction.Event{Kind: interaction.Move, X: 1})
		}()
		for s.Pending() == 0 {
			time.Sleep(time.Millisecond)
		}

		convey.Convey("Then further events are refused with backpressure", func() {
			_, err := s.Send(ctx, interaction.Event{Kind: interaction.Leave})
			convey.So(errors.Is(err, worker.ErrBackpressure), convey.ShouldBeTrue)

			close(reducer.gate)
			wg.Wait()
			convey.So(s.Close(), convey.ShouldBeNil)
			convey.So(reducer.events(), convey.ShouldHaveLength, 2)
		})
	})

	convey.Convey("Given a session that was never started", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		s := worker.NewSession(newMockReducer())

		convey.Convey("Then closing returns immediately", func() {
			convey.So(s.Close(), convey.ShouldBeNil)
			convey.So(s.Snapshot(), convey.ShouldResemble, interaction.State{})
		})
	})

	convey.Convey("Given a caller whose context expires while waiting", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		reducer := newMockReducer()
		reducer.gate = make(chan struct{})
		s := worker.NewSession(reducer)
		s.Start(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := s.Send(ctx, interaction.Event{Kind: interaction.Enter})

		convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
		close(reducer.gate)
		convey.So(s.Close(), convey.ShouldBeNil)
	})
}

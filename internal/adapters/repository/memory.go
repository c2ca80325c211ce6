package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/okian/peloton/pkg/metrics"
)

const (
	defaultMaxViews              = 256
	defaultMetricsUpdateInterval = 5 * time.Second
)

// MemoryStore is a bounded in-memory Store. Views are kept in insertion
// order so the oldest can be evicted first.
type MemoryStore struct {
	maxViews              int
	metricsUpdateInterval time.Duration

	mu     sync.Mutex
	byID   map[string]*list.Element
	order  *list.List
	closed bool

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMemoryStore constructs a store and starts its metrics updater.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		maxViews:              defaultMaxViews,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		byID:                  make(map[string]*list.Element),
		order:                 list.New(),
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateActiveViews(0)
	s.startMetricsUpdater(ctx)
	return s
}

// Put implements Store.Put.
func (s *MemoryStore) Put(ctx context.Context, v *View) error {
	if v == nil || v.ID == "" {
		return ErrInvalidView
	}

	var evicted []*View
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if old, ok := s.byID[v.ID]; ok {
		if ov := s.order.Remove(old).(*View); ov != v {
			evicted = append(evicted, ov)
		}
		delete(s.byID, v.ID)
	}
	for s.order.Len() >= s.maxViews {
		oldest := s.order.Front()
		ov := s.order.Remove(oldest).(*View)
		delete(s.byID, ov.ID)
		evicted = append(evicted, ov)
		metrics.RecordViewEvicted()
	}
	s.byID[v.ID] = s.order.PushBack(v)
	count := s.order.Len()
	s.mu.Unlock()

	metrics.UpdateActiveViews(count)
	for _, ov := range evicted {
		_ = ov.Release()
	}
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, id string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return el.Value.(*View), nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	el, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	v := s.order.Remove(el).(*View)
	delete(s.byID, id)
	count := s.order.Len()
	s.mu.Unlock()

	metrics.UpdateActiveViews(count)
	return v.Release()
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Close stops the metrics updater and releases every view.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var views []*View
	for el := s.order.Front(); el != nil; el = el.Next() {
		views = append(views, el.Value.(*View))
	}
	s.order.Init()
	s.byID = make(map[string]*list.Element)
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()

	var firstErr error
	for _, v := range views {
		if err := v.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	metrics.UpdateActiveViews(0)
	return firstErr
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateActiveViews(s.Count(ctx))
			}
		}
	}()
}

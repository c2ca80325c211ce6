package dataset

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/peloton/internal/domain/model"
	"github.com/okian/peloton/pkg/logger"
	"github.com/okian/peloton/pkg/metrics"
)

// Loader fetches and parses the dataset from a Source.
type Loader struct {
	source Source
	logger logger.Logger
}

// NewLoader wraps source.
func NewLoader(source Source, log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{source: source, logger: log}
}

// Load performs one fetch and parse.
func (l *Loader) Load(ctx context.Context) ([]model.Record, error) {
	start := time.Now()
	raw, err := l.source.Fetch(ctx)
	metrics.RecordDatasetFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		outcome := "fetch_error"
		if errors.Is(err, ErrDecode) {
			outcome = "decode_error"
		}
		metrics.RecordDatasetFetch(l.source.Name(), outcome)
		metrics.RecordErrorByComponent("dataset", outcome)
		l.logger.Error(ctx, "dataset fetch failed",
			logger.String("source", l.source.Name()),
			logger.Error(err),
		)
		return nil, err
	}

	records, err := Parse(raw)
	if err != nil {
		metrics.RecordDatasetFetch(l.source.Name(), "parse_error")
		metrics.RecordDatasetParseError()
		metrics.RecordErrorByComponent("dataset", "parse_error")
		l.logger.Error(ctx, "dataset parse failed", logger.Error(err))
		return nil, err
	}

	metrics.RecordDatasetFetch(l.source.Name(), "ok")
	metrics.UpdateDatasetRecords(len(records))
	l.logger.Info(ctx, "dataset loaded",
		logger.String("source", l.source.Name()),
		logger.Int("records", len(records)),
		logger.Duration("took", time.Since(start)),
	)
	return records, nil
}

// Provider yields the dataset.
type Provider interface {
	Load(ctx context.Context) ([]model.Record, error)
}

// Cache keeps the first successful load for the life of the process.
// Failures are not cached. Concurrent first loads share one fetch.
type Cache struct {
	inner Provider
	group singleflight.Group

	mu      sync.RWMutex
	records []model.Record
	loaded  bool
}

// NewCache wraps inner.
func NewCache(inner Provider) *Cache {
	return &Cache{inner: inner}
}

// Load returns the cached dataset, loading it on first use. The returned
// slice is shared and must not be modified.
func (c *Cache) Load(ctx context.Context) ([]model.Record, error) {
	c.mu.RLock()
	if c.loaded {
		records := c.records
		c.mu.RUnlock()
		metrics.RecordDatasetCacheHit()
		return records, nil
	}
	c.mu.RUnlock()

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("dataset", func() (any, error) {
		c.mu.RLock()
		if c.loaded {
			defer c.mu.RUnlock()
			return c.records, nil
		}
		c.mu.RUnlock()

		records, err := c.inner.Load(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.records, c.loaded = records, true
		c.mu.Unlock()
		return records, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.Record), nil
	}
}

// Loaded reports whether the dataset is cached.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

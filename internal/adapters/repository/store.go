// Package repository keeps the render contexts of live chart views.
package repository

import (
	"context"
	"time"

	"github.com/okian/peloton/internal/adapters/mq/worker"
	"github.com/okian/peloton/internal/domain/chart"
	"github.com/okian/peloton/internal/domain/model"
	"github.com/okian/peloton/internal/domain/scale"
)

// View is everything one rendered chart needs: its records, scales, the
// laid-out chart and the session owning its tooltip.
type View struct {
	ID      string
	Created time.Time
	Records []model.Record
	Scales  scale.Scales
	Chart   chart.Chart
	Session *worker.Session
}

// Release stops the view's session.
func (v *View) Release() error {
	if v == nil || v.Session == nil {
		return nil
	}
	return v.Session.Close()
}

// Store provides access to live views.
type Store interface {
	// Put adds a view. It may evict the oldest view to make room.
	Put(ctx context.Context, v *View) error

	// Get returns the view with id or ErrNotFound.
	Get(ctx context.Context, id string) (*View, error)

	// Delete removes a view and releases it. Returns ErrNotFound if unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live views.
	Count(ctx context.Context) int

	// Close releases every view.
	Close() error
}

// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/peloton/internal/adapters/dataset"
	"github.com/okian/peloton/internal/adapters/mq/worker"
	"github.com/okian/peloton/internal/adapters/repository"
	"github.com/okian/peloton/internal/domain/chart"
	"github.com/okian/peloton/internal/domain/interaction"
	"github.com/okian/peloton/internal/domain/model"
	"github.com/okian/peloton/internal/domain/scale"
	"github.com/okian/peloton/internal/domain/types"
	"github.com/okian/peloton/pkg/logger"
	"github.com/okian/peloton/pkg/metrics"
)

// ErrNotStarted is returned by view operations before Start.
var ErrNotStarted = errors.New("service not started")

// Loader yields the parsed dataset.
type Loader interface {
	Load(ctx context.Context) ([]model.Record, error)
}

// Service implements the API dependencies for the scatter plot.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader Loader
	views  repository.Store

	// Configuration
	datasetURL   string
	fetchTimeout time.Duration
	layout       scale.Layout
	style        chart.Style
	maxViews     int
	mailboxSize  int

	// State
	started       bool
	sessionCtx    context.Context
	cancelSession context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoader replaces the dataset loader. The service caches whatever it
// returns for the life of the process.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithDatasetURL sets the URL the default loader fetches from.
func WithDatasetURL(url string, timeout time.Duration) Option {
	return func(s *Service) {
		if url != "" {
			s.datasetURL = url
		}
		if timeout >= 0 {
			s.fetchTimeout = timeout
		}
	}
}

// WithLayout sets the canvas geometry and scale padding.
func WithLayout(l scale.Layout) Option {
	return func(s *Service) {
		s.layout = l
	}
}

// WithStyle sets colours and mark sizes.
func WithStyle(st chart.Style) Option {
	return func(s *Service) {
		s.style = st
	}
}

// WithMaxViews bounds the number of live views.
func WithMaxViews(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxViews = n
		}
	}
}

// WithMailboxSize bounds the pending pointer events per view.
func WithMailboxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.mailboxSize = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		datasetURL:  dataset.DefaultURL,
		layout:      scale.DefaultLayout(),
		style:       chart.DefaultStyle(),
		maxViews:    256,
		mailboxSize: 64,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if err := s.layout.Validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting chart service...")

	if s.loader == nil {
		src := dataset.NewHTTPSource(s.datasetURL, s.fetchTimeout)
		s.loader = dataset.NewLoader(src, s.logger.Named("dataset"))
	}
	if _, ok := s.loader.(*dataset.Cache); !ok {
		s.loader = dataset.NewCache(s.loader)
	}

	s.sessionCtx, s.cancelSession = context.WithCancel(context.WithoutCancel(ctx))
	s.views = repository.NewMemoryStore(s.sessionCtx, repository.WithMaxViews(s.maxViews))

	s.started = true
	s.logger.Info(ctx, "chart service started",
		logger.Int("maxViews", s.maxViews),
		logger.Int("mailboxSize", s.mailboxSize),
		logger.Float64("width", s.layout.Width),
		logger.Float64("height", s.layout.Height),
	)
	return nil
}

// Stop releases every view and shuts down sessions.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping chart service...")

	if s.views != nil {
		if err := s.views.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing views", logger.Error(err))
		}
	}
	if s.cancelSession != nil {
		s.cancelSession()
	}

	s.started = false
	s.logger.Info(context.Background(), "chart service stopped")
}

func (s *Service) running() (Loader, repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.loader, s.views, nil
}

// Dataset returns the parsed records, fetching them on first use.
func (s *Service) Dataset(ctx context.Context) ([]model.Record, error) {
	loader, _, err := s.running()
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

type built struct {
	records []model.Record
	scales  scale.Scales
	chart   chart.Chart
}

func (s *Service) build(ctx context.Context) (built, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return built{}, err
	}
	sc, err := scale.Build(records, s.layout)
	if err != nil {
		return built{}, err
	}
	c := chart.Build(records, sc, s.layout, s.style)
	metrics.UpdateMarksRendered(len(c.Marks))
	return built{records: records, scales: sc, chart: c}, nil
}

// RenderSVG writes a one-shot chart with a hidden tooltip.
func (s *Service) RenderSVG(ctx context.Context, w io.Writer) error {
	b, err := s.build(ctx)
	if err != nil {
		return err
	}
	return s.timed("svg", func() error {
		return chart.WriteSVG(w, b.chart, interaction.State{}.Overlay())
	})
}

// RenderPNG writes a one-shot raster chart.
func (s *Service) RenderPNG(ctx context.Context, w io.Writer) error {
	b, err := s.build(ctx)
	if err != nil {
		return err
	}
	return s.timed("png", func() error {
		return chart.WritePNG(w, b.chart)
	})
}

func (s *Service) timed(format string, render func() error) error {
	start := time.Now()
	err := render()
	metrics.RecordRender(format, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordErrorByComponent("render", format)
		return fmt.Errorf("render %s: %w", format, err)
	}
	return nil
}

// CreateView builds a chart and starts a session owning its tooltip.
func (s *Service) CreateView(ctx context.Context) (*repository.View, error) {
	_, views, err := s.running()
	if err != nil {
		return nil, err
	}
	b, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	session := worker.NewSession(
		interaction.NewMachine(b.chart),
		worker.WithName(id),
		worker.WithMailboxSize(s.mailboxSize),
		worker.WithLogger(s.logger.Named("session")),
	)
	s.mu.RLock()
	sessionCtx := s.sessionCtx
	s.mu.RUnlock()
	session.Start(sessionCtx)

	v := &repository.View{
		ID:      id,
		Created: time.Now().UTC(),
		Records: b.records,
		Scales:  b.scales,
		Chart:   b.chart,
		Session: session,
	}
	if err := views.Put(ctx, v); err != nil {
		_ = session.Close()
		return nil, err
	}

	s.logger.Debug(ctx, "view created", logger.String("view", id), logger.Int("marks", len(b.chart.Marks)))
	return v, nil
}

// OpenView creates a view and returns its summary with the initial SVG.
func (s *Service) OpenView(ctx context.Context) (types.ViewSummary, error) {
	v, err := s.CreateView(ctx)
	if err != nil {
		return types.ViewSummary{}, err
	}
	var buf bytes.Buffer
	if err := s.ViewSVG(ctx, v.ID, &buf); err != nil {
		return types.ViewSummary{}, err
	}
	sum := Summary(v)
	sum.SVG = buf.String()
	return sum, nil
}

// Records returns the dataset in its API form.
func (s *Service) Records(ctx context.Context) ([]types.Record, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, len(records))
	for i, r := range records {
		out[i] = types.Record{
			Name:        r.Name,
			Year:        r.YearString(),
			Time:        r.TimeString(),
			Seconds:     int(r.Time / time.Second),
			Place:       r.Place,
			Nationality: r.Nationality,
			Doping:      r.Doping,
			URL:         r.URL,
			Allegation:  r.Allegation.String(),
		}
	}
	return out, nil
}

// View returns a live view.
func (s *Service) View(ctx context.Context, id string) (*repository.View, error) {
	_, views, err := s.running()
	if err != nil {
		return nil, err
	}
	return views.Get(ctx, id)
}

// ViewSVG writes the view's chart with its current tooltip.
func (s *Service) ViewSVG(ctx context.Context, id string, w io.Writer) error {
	v, err := s.View(ctx, id)
	if err != nil {
		return err
	}
	overlay := v.Session.Snapshot().Overlay()
	return s.timed("svg", func() error {
		return chart.WriteSVG(w, v.Chart, overlay)
	})
}

// Pointer applies a pointer event to the view's tooltip.
func (s *Service) Pointer(ctx context.Context, id string, ev interaction.Event) (types.Tooltip, error) {
	v, err := s.View(ctx, id)
	if err != nil {
		return types.Tooltip{}, err
	}
	st, err := v.Session.Send(ctx, ev)
	return TooltipOf(st), err
}

// Tooltip returns the view's current tooltip.
func (s *Service) Tooltip(ctx context.Context, id string) (types.Tooltip, error) {
	v, err := s.View(ctx, id)
	if err != nil {
		return types.Tooltip{}, err
	}
	return TooltipOf(v.Session.Snapshot()), nil
}

// ReleaseView removes a view and stops its session.
func (s *Service) ReleaseView(ctx context.Context, id string) error {
	_, views, err := s.running()
	if err != nil {
		return err
	}
	if err := views.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug(ctx, "view released", logger.String("view", id))
	return nil
}

// Summary describes a view for API clients.
func Summary(v *repository.View) types.ViewSummary {
	out := types.ViewSummary{
		ID:      v.ID,
		Created: v.Created,
		Width:   v.Chart.Layout.Width,
		Height:  v.Chart.Layout.Height,
		Points:  make([]types.Point, len(v.Chart.Marks)),
	}
	for i, m := range v.Chart.Marks {
		out.Points[i] = types.Point{
			Index:      m.Index,
			Name:       m.Record.Name,
			Year:       m.XValue,
			Time:       m.Record.TimeString(),
			Allegation: m.Record.Allegation.String(),
			CX:         m.CX,
			CY:         m.CY,
		}
	}
	return out
}

// TooltipOf converts a session state to its API form.
func TooltipOf(st interaction.State) types.Tooltip {
	lines := st.Lines
	if lines == nil {
		lines = []string{}
	}
	return types.Tooltip{
		Shown:    st.Shown,
		Mark:     st.Mark,
		X:        st.X,
		Y:        st.Y,
		Width:    st.Width,
		Lines:    lines,
		DataYear: st.DataYear,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"maxViews":    s.maxViews,
		"mailboxSize": s.mailboxSize,
		"width":       s.layout.Width,
		"height":      s.layout.Height,
	}

	if s.started {
		activeViews := s.views.Count(ctx)
		stats["activeViews"] = activeViews
		if c, ok := s.loader.(*dataset.Cache); ok {
			stats["datasetLoaded"] = c.Loaded()
			stats["records"] = c.Len()
		}
		metrics.UpdateActiveViews(activeViews)
	}

	return stats
}

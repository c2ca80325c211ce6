// Package metrics provides Prometheus metrics for the peloton chart service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector peloton exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Dataset
	datasetFetches     *prometheus.CounterVec
	datasetFetchTime   prometheus.Histogram
	datasetRecords     prometheus.Gauge
	datasetCacheHits   prometheus.Counter
	datasetParseErrors prometheus.Counter

	// Rendering
	renders       *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
	marksRendered prometheus.Gauge

	// Interaction
	pointerEvents      *prometheus.CounterVec
	tooltipTransitions *prometheus.CounterVec
	mailboxRejections  prometheus.Counter
	activeViews        prometheus.Gauge
	viewsEvicted       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors on the
// configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "peloton",
		subsystem:        "chart",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	latencyMs := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

	m.datasetFetches = auto.NewCounterVec(m.counterOpts("dataset_fetches_total", "Dataset fetch attempts by outcome"), []string{"source", "outcome"})
	m.datasetFetchTime = auto.NewHistogram(m.histogramOpts("dataset_fetch_latency_milliseconds", "Dataset fetch and parse latency in milliseconds", latencyMs))
	m.datasetRecords = auto.NewGauge(m.gaugeOpts("dataset_records", "Number of records in the most recently loaded dataset"))
	m.datasetCacheHits = auto.NewCounter(m.counterOpts("dataset_cache_hits_total", "Dataset requests served from the in-process cache"))
	m.datasetParseErrors = auto.NewCounter(m.counterOpts("dataset_parse_errors_total", "Records rejected because year or time could not be parsed"))

	m.renders = auto.NewCounterVec(m.counterOpts("renders_total", "Chart renders by output format"), []string{"format"})
	m.renderLatency = auto.NewHistogramVec(m.histogramOpts("render_latency_milliseconds", "Chart render latency in milliseconds", latencyMs), []string{"format"})
	m.marksRendered = auto.NewGauge(m.gaugeOpts("marks_rendered", "Number of marks in the most recent render"))

	m.pointerEvents = auto.NewCounterVec(m.counterOpts("pointer_events_total", "Pointer events delivered to tooltip sessions"), []string{"kind"})
	m.tooltipTransitions = auto.NewCounterVec(m.counterOpts("tooltip_transitions_total", "Tooltip state transitions"), []string{"from", "to"})
	m.mailboxRejections = auto.NewCounter(m.counterOpts("mailbox_rejections_total", "Pointer events rejected because a session mailbox was full"))
	m.activeViews = auto.NewGauge(m.gaugeOpts("active_views", "Number of live render contexts"))
	m.viewsEvicted = auto.NewCounter(m.counterOpts("views_evicted_total", "Views evicted to make room for new ones"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds", "Latency of failed operations in milliseconds", nil), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordDatasetFetch counts one dataset load attempt. outcome is "ok" or an
// error kind such as "status" or "decode".
func RecordDatasetFetch(source, outcome string) {
	globalManager.datasetFetches.WithLabelValues(source, outcome).Inc()
}

// RecordDatasetFetchLatency records the time spent fetching and parsing.
func RecordDatasetFetchLatency(latencyMs float64) {
	globalManager.datasetFetchTime.Observe(latencyMs)
}

// UpdateDatasetRecords sets the size of the loaded dataset.
func UpdateDatasetRecords(count int) {
	globalManager.datasetRecords.Set(float64(count))
}

// RecordDatasetCacheHit counts a dataset served from memory.
func RecordDatasetCacheHit() {
	globalManager.datasetCacheHits.Inc()
}

// RecordDatasetParseError counts a malformed record.
func RecordDatasetParseError() {
	globalManager.datasetParseErrors.Inc()
}

// RecordRender counts a finished render of the given format (svg, png).
func RecordRender(format string, latencyMs float64) {
	globalManager.renders.WithLabelValues(format).Inc()
	globalManager.renderLatency.WithLabelValues(format).Observe(latencyMs)
}

// UpdateMarksRendered sets the mark count of the last render.
func UpdateMarksRendered(count int) {
	globalManager.marksRendered.Set(float64(count))
}

// RecordPointerEvent counts a pointer event by kind (enter, move, leave).
func RecordPointerEvent(kind string) {
	globalManager.pointerEvents.WithLabelValues(kind).Inc()
}

// RecordTooltipTransition counts a tooltip state change.
func RecordTooltipTransition(from, to string) {
	globalManager.tooltipTransitions.WithLabelValues(from, to).Inc()
}

// RecordMailboxRejection counts an event dropped on a full mailbox.
func RecordMailboxRejection() {
	globalManager.mailboxRejections.Inc()
}

// UpdateActiveViews sets the number of live views.
func UpdateActiveViews(count int) {
	globalManager.activeViews.Set(float64(count))
}

// RecordViewEvicted counts a view dropped by the store's capacity bound.
func RecordViewEvicted() {
	globalManager.viewsEvicted.Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error attributed to a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records latency for a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage updates the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval is how often the process gauges are sampled.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RefreshInterval is the sampling interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

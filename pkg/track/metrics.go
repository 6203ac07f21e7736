package track

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics of a Runtime.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "autotrack").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the flush duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "autotrack",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of a Runtime.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	writes        prometheus.Counter
	links         prometheus.Counter
	unlinks       prometheus.Counter
	flushes       prometheus.Counter
	redraws       prometheus.Counter
	skipped       prometheus.Counter
	panics        prometheus.Counter
	flushDuration prometheus.Histogram
	pending       prometheus.Gauge
	edges         prometheus.Gauge
}

// NewMetrics creates and registers the runtime metrics.
//
// Metrics collected:
//   - autotrack_writes_total: property writes
//   - autotrack_links_total: dependency edges created
//   - autotrack_unlinks_total: dependency edges removed
//   - autotrack_flushes_total: batched flushes that redrew at least one observer
//   - autotrack_redraws_total: forced redraws
//   - autotrack_redraws_skipped_total: queued observers dead at flush time
//   - autotrack_redraw_panics_total: redraws that panicked
//   - autotrack_flush_duration_seconds: flush duration
//   - autotrack_pending_observers: observers waiting for the next flush
//   - autotrack_graph_edges: dependency edges currently in the graph
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		writes:  counter("writes_total", "Total number of tracked property writes"),
		links:   counter("links_total", "Total number of dependency edges created"),
		unlinks: counter("unlinks_total", "Total number of dependency edges removed"),
		flushes: counter("flushes_total", "Total number of batched flushes"),
		redraws: counter("redraws_total", "Total number of forced redraws"),
		skipped: counter("redraws_skipped_total", "Queued observers that were dead at flush time"),
		panics:  counter("redraw_panics_total", "Forced redraws that panicked"),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Batched flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		pending: gauge("pending_observers", "Observers waiting for the next flush"),
		edges:   gauge("graph_edges", "Dependency edges currently in the graph"),
	}
}

func (m *Metrics) wrote() {
	if m != nil {
		m.writes.Inc()
	}
}

func (m *Metrics) linked() {
	if m != nil {
		m.links.Inc()
	}
}

func (m *Metrics) unlinked(n int) {
	if m != nil {
		m.unlinks.Add(float64(n))
	}
}

func (m *Metrics) setPending(n int) {
	if m != nil {
		m.pending.Set(float64(n))
	}
}

func (m *Metrics) setEdges(n int) {
	if m != nil {
		m.edges.Set(float64(n))
	}
}

func (m *Metrics) flushed(d time.Duration, redrawn, skipped, failed int) {
	if m == nil {
		return
	}
	m.flushes.Inc()
	m.flushDuration.Observe(d.Seconds())
	m.redraws.Add(float64(redrawn))
	m.skipped.Add(float64(skipped))
	m.panics.Add(float64(failed))
}

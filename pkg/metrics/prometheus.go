// Package metrics provides Prometheus metrics for the daily boss picker.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors of a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Draw outcomes
	draws       *prometheus.CounterVec
	replays     prometheus.Counter
	exhaustions prometheus.Counter
	quota       prometheus.Gauge
	picks       prometheus.Gauge
	runDuration prometheus.Histogram

	// History store
	storeErrors  *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
	pruned       prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dailyboss",
		subsystem:        "picker",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.draws = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "draws_total",
		Help:        "Items drawn, by region and candidate stage (capped or relaxed)",
		ConstLabels: labels,
	}, []string{"region", "stage"})

	m.replays = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replays_total",
		Help:        "Runs that replayed an already computed daily result",
		ConstLabels: labels,
	})

	m.exhaustions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exhaustions_total",
		Help:        "Runs that stopped early because every item was drawn today",
		ConstLabels: labels,
	})

	m.quota = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "quota",
		Help:        "Draws per day derived from the resin budget",
		ConstLabels: labels,
	})

	m.picks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "picks_last_run",
		Help:        "Number of picks returned by the last run",
		ConstLabels: labels,
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "Duration of a daily run in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_errors_total",
		Help:        "History store failures by operation",
		ConstLabels: labels,
	}, []string{"operation"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_latency_milliseconds",
		Help:        "History store operation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"operation"})

	m.pruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pruned_records_total",
		Help:        "History rows deleted by retention pruning",
		ConstLabels: labels,
	})
}

// RecordDraw increments the draw counter.
func RecordDraw(region, stage string) {
	globalManager.draws.WithLabelValues(region, stage).Inc()
}

// RecordReplay increments the replay counter.
func RecordReplay() {
	globalManager.replays.Inc()
}

// RecordExhausted increments the exhaustion counter.
func RecordExhausted() {
	globalManager.exhaustions.Inc()
}

// UpdateQuota sets the configured daily quota.
func UpdateQuota(n int) {
	globalManager.quota.Set(float64(n))
}

// UpdatePicks sets the number of picks of the last run.
func UpdatePicks(n int) {
	globalManager.picks.Set(float64(n))
}

// RecordRunDuration observes a run duration.
func RecordRunDuration(ms float64) {
	globalManager.runDuration.Observe(ms)
}

// RecordStoreError increments the store error counter for an operation.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// RecordStoreLatency observes a store operation latency.
func RecordStoreLatency(operation string, ms float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(ms)
}

// AddPruned adds deleted rows to the pruning counter.
func AddPruned(n int64) {
	if n > 0 {
		globalManager.pruned.Add(float64(n))
	}
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector. A short-lived process has nobody to
// scrape it.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

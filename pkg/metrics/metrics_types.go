package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for a rupture set build
type Registry struct {
	// Pipeline metrics
	SubsectionsTotal      prometheus.Gauge
	ConnectionsTotal      prometheus.Gauge
	StageDuration         *prometheus.HistogramVec
	RupturesAcceptedTotal prometheus.Counter
	RupturesPerStart      prometheus.Histogram
	AssemblyFailuresTotal prometheus.Counter

	// Plausibility metrics
	CandidatesEvaluatedTotal *prometheus.CounterVec
	FilterRejectionsTotal    *prometheus.CounterVec

	// System metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initBuildMetrics()
	r.initFilterMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

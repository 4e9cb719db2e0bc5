package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.SubsectionsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rupset_subsections",
			Help: "Number of subsections in the current build",
		},
	)

	r.ConnectionsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rupset_connections",
			Help: "Number of directed parent connections in the current build",
		},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rupset_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
		},
		[]string{"stage"},
	)

	r.RupturesAcceptedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "rupset_ruptures_accepted_total",
			Help: "Total number of ruptures accepted into the set",
		},
	)

	r.RupturesPerStart = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rupset_ruptures_per_start_section",
			Help:    "Ruptures found from each start section before deduplication",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		},
	)

	r.AssemblyFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "rupset_assembly_failures_total",
			Help: "Total number of ruptures whose attributes could not be computed",
		},
	)
}

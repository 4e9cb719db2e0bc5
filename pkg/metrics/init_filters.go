package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFilterMetrics() {
	r.CandidatesEvaluatedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rupset_candidates_evaluated_total",
			Help: "Candidate ruptures run through the plausibility chain",
		},
		[]string{"strategy"},
	)

	r.FilterRejectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rupset_filter_rejections_total",
			Help: "Candidates rejected by each plausibility filter",
		},
		[]string{"filter", "result"},
	)
}

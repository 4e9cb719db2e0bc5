package metrics

import (
	"runtime"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// ObserveStage records the duration of one pipeline stage
func (r *Registry) ObserveStage(stage string, duration time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordCatalogue sets the subsection and connection gauges
func (r *Registry) RecordCatalogue(subsections, connections int) {
	r.SubsectionsTotal.Set(float64(subsections))
	r.ConnectionsTotal.Set(float64(connections))
}

// RecordCandidate counts one chain evaluation under the given strategy
func (r *Registry) RecordCandidate(strategy string) {
	r.CandidatesEvaluatedTotal.WithLabelValues(strategy).Inc()
}

// RecordRejection counts a rejection by filter and result
func (r *Registry) RecordRejection(filter, result string) {
	r.FilterRejectionsTotal.WithLabelValues(filter, result).Inc()
}

// RecordStartSection observes the number of ruptures found from one start section
func (r *Registry) RecordStartSection(found int) {
	r.RupturesPerStart.Observe(float64(found))
}

// RecordAccepted adds n accepted ruptures
func (r *Registry) RecordAccepted(n int) {
	r.RupturesAcceptedTotal.Add(float64(n))
}

// RecordAssemblyFailure counts one rupture whose attributes failed
func (r *Registry) RecordAssemblyFailure() {
	r.AssemblyFailuresTotal.Inc()
}

// UpdateSystemMetrics samples the runtime
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
	r.MemorySysBytes.Set(float64(ms.Sys))
}

// Sample is one metric value flattened for reporting
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers every counter and gauge under the given name prefix,
// sorted by name then labels. Histograms report their sample count.
func (r *Registry) Snapshot(prefix string) ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			out = append(out, Sample{
				Name:   mf.GetName(),
				Labels: labelString(m.GetLabel()),
				Value:  sampleValue(mf.GetType(), m),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}

func sampleValue(kind dto.MetricType, m *dto.Metric) float64 {
	switch kind {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}

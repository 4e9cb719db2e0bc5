// Package rupset assembles accepted ruptures into the artifact handed to an
// inversion: subsections, per-rupture attributes and the configuration used.
package rupset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-rupset/pkg/config"
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/plausibility"
)

// RuptureSet is the immutable result of one build.
type RuptureSet struct {
	RunID        uuid.UUID
	Info         string
	Created      time.Time
	Sections     *faults.SectionList
	Ruptures     []Rupture
	Failures     []AssemblyFailure
	Plausibility *plausibility.Configuration
	Config       *config.Config
	Stats        Stats

	slipRates     []float64
	areasReduced  []float64
	areasOriginal []float64
}

// Stats summarises a build
type Stats struct {
	Parents     int
	Subsections int
	Connections int
	Systems     int // groups of parents linked by jumps
	Candidates  int64
	Rejections  map[string]int64
	Durations   map[string]time.Duration // keyed by stage
}

func newRuptureSet(sections *faults.SectionList, ruptures []Rupture, failures []AssemblyFailure, conf *plausibility.Configuration, cfg *config.Config, stats Stats) *RuptureSet {
	rs := &RuptureSet{
		RunID:         uuid.New(),
		Created:       time.Now().UTC(),
		Sections:      sections,
		Ruptures:      ruptures,
		Failures:      failures,
		Plausibility:  conf,
		Config:        cfg,
		Stats:         stats,
		slipRates:     make([]float64, sections.Len()),
		areasReduced:  make([]float64, sections.Len()),
		areasOriginal: make([]float64, sections.Len()),
	}
	for i, s := range sections.All() {
		rs.slipRates[i] = s.SlipRateMeters() * (1 - s.Aseismicity)
		rs.areasReduced[i] = s.AreaReduced
		rs.areasOriginal[i] = s.AreaOriginal
	}
	rs.Info = rs.describe()
	return rs
}

// NumRuptures returns the number of assembled ruptures
func (rs *RuptureSet) NumRuptures() int {
	return len(rs.Ruptures)
}

// SlipRates returns each subsection's slip rate in m/yr, reduced for aseismicity, in id order.
func (rs *RuptureSet) SlipRates() []float64 {
	return rs.slipRates
}

// SectionAreas returns each subsection's area in m², in id order.
func (rs *RuptureSet) SectionAreas(reduced bool) []float64 {
	if reduced {
		return rs.areasReduced
	}
	return rs.areasOriginal
}

// Rupture returns the rupture with the given id
func (rs *RuptureSet) Rupture(id int) (Rupture, bool) {
	// ids are ascending, with gaps only where assembly failed
	lo, hi := 0, len(rs.Ruptures)
	for lo < hi {
		mid := (lo + hi) / 2
		if rs.Ruptures[mid].ID < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(rs.Ruptures) && rs.Ruptures[lo].ID == id {
		return rs.Ruptures[lo], true
	}
	return Rupture{}, false
}

// RupturesFor returns the ids of ruptures that include subsection id
func (rs *RuptureSet) RupturesFor(sectionID int) []int {
	var out []int
	for _, r := range rs.Ruptures {
		for _, s := range r.Sections {
			if s == sectionID {
				out = append(out, r.ID)
				break
			}
		}
	}
	return out
}

// MagnitudeRange returns the smallest and largest rupture magnitudes
func (rs *RuptureSet) MagnitudeRange() (lo, hi float64) {
	for i, r := range rs.Ruptures {
		if i == 0 || r.Magnitude < lo {
			lo = r.Magnitude
		}
		if i == 0 || r.Magnitude > hi {
			hi = r.Magnitude
		}
	}
	return lo, hi
}

func (rs *RuptureSet) describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", rs.RunID)
	fmt.Fprintf(&b, "parents: %d, subsections: %d, connections: %d\n", rs.Stats.Parents, rs.Stats.Subsections, rs.Stats.Connections)
	fmt.Fprintf(&b, "fault systems: %d\n", rs.Stats.Systems)
	fmt.Fprintf(&b, "ruptures: %d, failed: %d\n", len(rs.Ruptures), len(rs.Failures))
	if rs.Plausibility != nil {
		names := make([]string, 0, len(rs.Plausibility.Chain.Filters()))
		for _, f := range rs.Plausibility.Chain.Filters() {
			names = append(names, f.Name())
		}
		fmt.Fprintf(&b, "max jump distance: %g km\n", rs.Plausibility.Connections.MaxJumpDistance)
		fmt.Fprintf(&b, "filters: %s\n", strings.Join(names, ", "))
	}
	if rs.Config != nil {
		fmt.Fprintf(&b, "strategy: %s, scaling: %s\n", rs.Config.Build.Strategy, rs.Config.Build.Scaling)
	}
	return b.String()
}

package plausibility

import (
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

// Result is the outcome of one filter on a candidate rupture
type Result int

const (
	// Pass means the candidate satisfies the filter
	Pass Result = iota
	// FailFuturePossible rejects the candidate but an extension of it may still pass
	FailFuturePossible
	// FailHardStop rejects the candidate and every extension of it
	FailHardStop
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "pass"
	case FailFuturePossible:
		return "fail_future_possible"
	case FailHardStop:
		return "fail_hard_stop"
	default:
		return "unknown"
	}
}

// Passed reports whether the result is Pass
func (r Result) Passed() bool { return r == Pass }

// CanContinue reports whether growth may continue past this result
func (r Result) CanContinue() bool { return r != FailHardStop }

// Filter is a predicate over a candidate rupture. Implementations must be safe for
// concurrent use and must not retain the rupture.
type Filter interface {
	// Apply evaluates the candidate
	Apply(r *rupture.ClusterRupture) Result

	// Name returns a stable identifier used in diagnostics
	Name() string
}

// Geometry provides azimuths between subsections
type Geometry interface {
	Azimuth(a, b int) float64
}

// Grids tells filters which parents are down-dip grids.
type Grids interface {
	IsGridParent(parentID int) bool
	Grid(parentID int) *faults.DownDipGrid
}

// strikeSections returns the primary-strand subsections of trace-based clusters, in
// order, and the number of such clusters. Grid clusters have no strike order.
func strikeSections(r *rupture.ClusterRupture, grids Grids) ([]int, int) {
	var ids []int
	n := 0
	for _, c := range r.Primary() {
		if grids.IsGridParent(c.ParentID) {
			continue
		}
		ids = append(ids, c.Sections...)
		n++
	}
	return ids, n
}

package plausibility

import (
	"math"
	"slices"

	"github.com/dd0wney/cluso-rupset/pkg/geometry"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

const (
	DefaultMaxAzimuthChange           = 60.0
	DefaultMaxTotalAzimuthChange      = 60.0
	DefaultMaxCumulativeAzimuthChange = 560.0
)

// JumpAzimuthChangeFilter rejects ruptures where the strike changes by more than
// Max degrees across any jump. The change is measured between the last segment
// before the jump and the first segment after it.
type JumpAzimuthChangeFilter struct {
	Max   float64
	geom  Geometry
	grids Grids
}

// NewJumpAzimuthChangeFilter creates the filter
func NewJumpAzimuthChangeFilter(max float64, geom Geometry, grids Grids) *JumpAzimuthChangeFilter {
	return &JumpAzimuthChangeFilter{Max: max, geom: geom, grids: grids}
}

func (f *JumpAzimuthChangeFilter) Name() string { return "jump_azimuth_change" }

func (f *JumpAzimuthChangeFilter) Apply(r *rupture.ClusterRupture) Result {
	for _, j := range r.Jumps() {
		from := r.Cluster(j.FromCluster)
		to := r.Cluster(j.ToCluster)
		if f.grids.IsGridParent(from.ParentID) || f.grids.IsGridParent(to.ParentID) {
			continue
		}
		if math.Abs(f.change(j, from, to)) > f.Max {
			return FailHardStop
		}
	}
	return Pass
}

// change uses the jump's own direction in place of a segment for single-subsection clusters.
func (f *JumpAzimuthChangeFilter) change(j rupture.Jump, from, to rupture.Cluster) float64 {
	jumpAz := f.geom.Azimuth(j.From, j.To)

	before := jumpAz
	if ix := slices.Index(from.Sections, j.From); ix > 0 {
		before = f.geom.Azimuth(from.Sections[ix-1], j.From)
	} else if from.Len() > 1 {
		before = f.geom.Azimuth(from.Sections[0], from.Sections[1])
	}

	after := jumpAz
	if to.Len() > 1 {
		after = f.geom.Azimuth(to.Sections[0], to.Sections[1])
	}
	return geometry.AzimuthDifference(before, after)
}

// TotalAzimuthChangeFilter rejects multi-fault ruptures whose first or last segment
// deviates from the overall start-to-end azimuth by more than Max degrees.
// Extending the rupture moves its end, so a failure here is not final.
type TotalAzimuthChangeFilter struct {
	Max   float64
	geom  Geometry
	grids Grids
}

// NewTotalAzimuthChangeFilter creates the filter
func NewTotalAzimuthChangeFilter(max float64, geom Geometry, grids Grids) *TotalAzimuthChangeFilter {
	return &TotalAzimuthChangeFilter{Max: max, geom: geom, grids: grids}
}

func (f *TotalAzimuthChangeFilter) Name() string { return "total_azimuth_change" }

func (f *TotalAzimuthChangeFilter) Apply(r *rupture.ClusterRupture) Result {
	ids, clusters := strikeSections(r, f.grids)
	if clusters < 2 || len(ids) < 2 {
		return Pass
	}
	if geometry.TotalAzimuthChange(f.geom, ids, 0) > f.Max ||
		geometry.TotalAzimuthChange(f.geom, ids, len(ids)-2) > f.Max {
		return FailFuturePossible
	}
	return Pass
}

// CumulativeAzimuthChangeFilter rejects ruptures whose summed absolute azimuth
// changes exceed Max degrees. The sum only grows as a rupture is extended.
type CumulativeAzimuthChangeFilter struct {
	Max   float64
	geom  Geometry
	grids Grids
}

// NewCumulativeAzimuthChangeFilter creates the filter
func NewCumulativeAzimuthChangeFilter(max float64, geom Geometry, grids Grids) *CumulativeAzimuthChangeFilter {
	return &CumulativeAzimuthChangeFilter{Max: max, geom: geom, grids: grids}
}

func (f *CumulativeAzimuthChangeFilter) Name() string { return "cumulative_azimuth_change" }

func (f *CumulativeAzimuthChangeFilter) Apply(r *rupture.ClusterRupture) Result {
	ids, _ := strikeSections(r, f.grids)
	if geometry.CumulativeAzimuthChange(f.geom, ids) > f.Max {
		return FailHardStop
	}
	return Pass
}

package plausibility

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

const (
	DefaultMinSectsPerParent = 2
	DefaultMaxSplays         = 0
	DefaultMinAspect         = 1.0
	DefaultMaxAspect         = 3.0
	DefaultMinFill           = 1.0
)

// fillTolerance absorbs rounding in fill fractions and aspect ratios
const fillTolerance = 1e-9

// MinSectsPerParentFilter rejects ruptures where any cluster, including the
// first and last, has fewer than Min subsections. Clusters are complete when
// they are added, so a failure is final.
type MinSectsPerParentFilter struct {
	Min int
}

// NewMinSectsPerParentFilter creates the filter
func NewMinSectsPerParentFilter(min int) *MinSectsPerParentFilter {
	return &MinSectsPerParentFilter{Min: min}
}

func (f *MinSectsPerParentFilter) Name() string { return "min_sects_per_parent" }

func (f *MinSectsPerParentFilter) Apply(r *rupture.ClusterRupture) Result {
	for i := 0; i < r.NumClusters(); i++ {
		if r.Cluster(i).Len() < f.Min {
			return FailHardStop
		}
	}
	return Pass
}

// MaxSplaysFilter caps the number of splays
type MaxSplaysFilter struct {
	Max int
}

// NewMaxSplaysFilter creates the filter
func NewMaxSplaysFilter(max int) *MaxSplaysFilter {
	return &MaxSplaysFilter{Max: max}
}

func (f *MaxSplaysFilter) Name() string { return "max_splays" }

func (f *MaxSplaysFilter) Apply(r *rupture.ClusterRupture) Result {
	if r.NumSplays() > f.Max {
		return FailHardStop
	}
	return Pass
}

// FaultIDMode selects how FaultIDFilter treats its id set
type FaultIDMode int

const (
	// IncludeOnly accepts only ruptures whose parents are all in the set
	IncludeOnly FaultIDMode = iota
	// Exclude rejects ruptures touching any parent in the set
	Exclude
	// RequireAll accepts only ruptures that contain every parent in the set
	RequireAll
	// RequireAny accepts only ruptures that contain at least one parent in the set
	RequireAny
)

var faultIDModeNames = []string{"include_only", "exclude", "require_all", "require_any"}

// ErrUnknownMode is returned when parsing an unrecognised fault id filter mode
var ErrUnknownMode = errors.New("unknown fault id filter mode")

func (m FaultIDMode) String() string {
	if int(m) >= 0 && int(m) < len(faultIDModeNames) {
		return faultIDModeNames[m]
	}
	return "unknown"
}

// FaultIDModeNames returns the accepted mode names
func FaultIDModeNames() []string {
	return slices.Clone(faultIDModeNames)
}

// ParseFaultIDMode parses a mode name
func ParseFaultIDMode(s string) (FaultIDMode, error) {
	ix := slices.Index(faultIDModeNames, strings.ToLower(strings.TrimSpace(s)))
	if ix < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return FaultIDMode(ix), nil
}

// FaultIDFilter restricts ruptures by parent fault id
type FaultIDFilter struct {
	Mode FaultIDMode
	ids  map[int]struct{}
}

// NewFaultIDFilter creates the filter for the given parent ids
func NewFaultIDFilter(mode FaultIDMode, parentIDs []int) *FaultIDFilter {
	ids := make(map[int]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		ids[id] = struct{}{}
	}
	return &FaultIDFilter{Mode: mode, ids: ids}
}

func (f *FaultIDFilter) Name() string { return "fault_id_" + f.Mode.String() }

func (f *FaultIDFilter) Apply(r *rupture.ClusterRupture) Result {
	parents := r.ParentIDs()
	switch f.Mode {
	case IncludeOnly:
		for _, p := range parents {
			if _, ok := f.ids[p]; !ok {
				return FailHardStop
			}
		}
	case Exclude:
		for _, p := range parents {
			if _, ok := f.ids[p]; ok {
				return FailHardStop
			}
		}
	case RequireAll:
		for id := range f.ids {
			if !slices.Contains(parents, id) {
				return FailFuturePossible
			}
		}
	case RequireAny:
		for _, p := range parents {
			if _, ok := f.ids[p]; ok {
				return Pass
			}
		}
		return FailFuturePossible
	}
	return Pass
}

// RectangularityFilter checks every grid cluster against the bounding rectangle of its
// cells: the cells must fill at least MinFill of it, its rows/cols aspect
// ratio must lie in [MinAspect, MaxAspect] and the cells must be edge-connected.
type RectangularityFilter struct {
	MinAspect float64
	MaxAspect float64
	MinFill   float64
	grids     Grids
}

// NewRectangularityFilter creates the filter
func NewRectangularityFilter(minAspect, maxAspect, minFill float64, grids Grids) *RectangularityFilter {
	return &RectangularityFilter{MinAspect: minAspect, MaxAspect: maxAspect, MinFill: minFill, grids: grids}
}

func (f *RectangularityFilter) Name() string { return "rectangularity" }

func (f *RectangularityFilter) Apply(r *rupture.ClusterRupture) Result {
	for i := 0; i < r.NumClusters(); i++ {
		c := r.Cluster(i)
		g := f.grids.Grid(c.ParentID)
		if g == nil {
			continue
		}
		rows, cols, ok := Bounds(g.Position, c.Sections)
		if !ok {
			return FailHardStop
		}
		if !RectangleAllowed(rows, cols, c.Len(), f.MinAspect, f.MaxAspect, f.MinFill) {
			return FailHardStop
		}
		if !EdgeConnected(g.Adjacent, c.Sections) {
			return FailHardStop
		}
	}
	return Pass
}

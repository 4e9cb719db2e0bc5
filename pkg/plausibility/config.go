package plausibility

import (
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-rupset/pkg/connections"
	"github.com/dd0wney/cluso-rupset/pkg/validation"
)

// ErrConfiguration is returned for contradictory or out-of-range plausibility settings.
var ErrConfiguration = errors.New("invalid plausibility configuration")

// Configuration is the frozen set of connection parameters, filters and splay cap
// for one run. It is shared read-only by every enumeration worker.
type Configuration struct {
	Connections *Connections
	Chain       *Chain
	MaxSplays   int
}

// Connections bundles the connection graph with the cutoff it was built at.
type Connections struct {
	Graph           *connections.Graph
	MaxJumpDistance float64
}

// Builder assembles a Configuration. Filters are added in call order; errors
// are collected and reported by Build.
type Builder struct {
	graph     *connections.Graph
	filters   []func(g *connections.Graph) Filter
	maxSplays int
	cv        *validation.ConfigValidator
}

// NewBuilder starts a configuration over a connection graph
func NewBuilder(graph *connections.Graph) *Builder {
	return &Builder{
		graph:     graph,
		maxSplays: DefaultMaxSplays,
		cv:        validation.NewConfigValidator("Plausibility"),
	}
}

// JumpAzimuthChange adds a JumpAzimuthChangeFilter
func (b *Builder) JumpAzimuthChange(max float64) *Builder {
	b.cv.PositiveFloat("MaxAzimuthChange", max)
	b.filters = append(b.filters, func(g *connections.Graph) Filter {
		return NewJumpAzimuthChangeFilter(max, g.Calculator(), g.Sections())
	})
	return b
}

// TotalAzimuthChange adds a TotalAzimuthChangeFilter
func (b *Builder) TotalAzimuthChange(max float64) *Builder {
	b.cv.PositiveFloat("MaxTotalAzimuthChange", max)
	b.filters = append(b.filters, func(g *connections.Graph) Filter {
		return NewTotalAzimuthChangeFilter(max, g.Calculator(), g.Sections())
	})
	return b
}

// CumulativeAzimuthChange adds a CumulativeAzimuthChangeFilter
func (b *Builder) CumulativeAzimuthChange(max float64) *Builder {
	b.cv.PositiveFloat("MaxCumulativeAzimuthChange", max)
	b.filters = append(b.filters, func(g *connections.Graph) Filter {
		return NewCumulativeAzimuthChangeFilter(max, g.Calculator(), g.Sections())
	})
	return b
}

// MinSectsPerParent adds a MinSectsPerParentFilter
func (b *Builder) MinSectsPerParent(min int) *Builder {
	b.cv.MinInt("MinSectsPerParent", min, 1)
	b.filters = append(b.filters, func(*connections.Graph) Filter { return NewMinSectsPerParentFilter(min) })
	return b
}

// FaultIDs adds a FaultIDFilter
func (b *Builder) FaultIDs(mode FaultIDMode, parentIDs []int) *Builder {
	b.cv.RangeInt("FaultIDMode", int(mode), int(IncludeOnly), int(RequireAny))
	b.cv.NotEmpty("FaultIDs", len(parentIDs))
	b.filters = append(b.filters, func(*connections.Graph) Filter { return NewFaultIDFilter(mode, parentIDs) })
	return b
}

// Rectangularity adds a RectangularityFilter for grid clusters
func (b *Builder) Rectangularity(minAspect, maxAspect, minFill float64) *Builder {
	b.cv.RangeFloat("MinAspect", minAspect, 1, math.MaxFloat64).
		OrderedFloat("MinAspect", minAspect, "MaxAspect", maxAspect).
		PositiveFloat("MinFill", minFill).
		RangeFloat("MinFill", minFill, 0, 1)
	b.filters = append(b.filters, func(g *connections.Graph) Filter {
		return NewRectangularityFilter(minAspect, maxAspect, minFill, g.Sections())
	})
	return b
}

// MaxSplays sets the splay cap
func (b *Builder) MaxSplays(max int) *Builder {
	b.cv.NonNegative("MaxSplays", max)
	b.maxSplays = max
	return b
}

// Add appends a custom filter
func (b *Builder) Add(f Filter) *Builder {
	b.filters = append(b.filters, func(*connections.Graph) Filter { return f })
	return b
}

// Build freezes the configuration. The splay cap is enforced as the first filter.
func (b *Builder) Build() (*Configuration, error) {
	if b.graph == nil {
		return nil, fmt.Errorf("%w: connection graph is required", ErrConfiguration)
	}
	if err := b.cv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	filters := make([]Filter, 0, len(b.filters)+1)
	filters = append(filters, NewMaxSplaysFilter(b.maxSplays))
	for _, mk := range b.filters {
		filters = append(filters, mk(b.graph))
	}
	return &Configuration{
		Connections: &Connections{Graph: b.graph, MaxJumpDistance: b.graph.MaxJumpDistance()},
		Chain:       NewChain(filters...),
		MaxSplays:   b.maxSplays,
	}, nil
}

// Standard builds the default chain: jump, total and cumulative azimuth change,
// minimum subsections per parent, and rectangularity when the graph has grids.
func Standard(graph *connections.Graph) (*Configuration, error) {
	b := NewBuilder(graph).
		JumpAzimuthChange(DefaultMaxAzimuthChange).
		TotalAzimuthChange(DefaultMaxTotalAzimuthChange).
		CumulativeAzimuthChange(DefaultMaxCumulativeAzimuthChange).
		MinSectsPerParent(DefaultMinSectsPerParent)
	if graph != nil && len(graph.Sections().Grids()) > 0 {
		b.Rectangularity(DefaultMinAspect, DefaultMaxAspect, DefaultMinFill)
	}
	return b.Build()
}

// Package strategy enumerates the clusters a rupture may use on one parent fault.
//
// A strategy is asked for every cluster on a parent that begins at a given
// subsection. The builder uses it both for the first cluster of a rupture and
// for the cluster entered by each jump, so strategies hold no per-rupture state
// and are safe for concurrent use.
package strategy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dd0wney/cluso-rupset/pkg/connections"
	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/rupture"
)

// Kind names a strategy variant
type Kind string

const (
	// Incremental grows clusters one subsection at a time in both directions
	Incremental Kind = "incremental"
	// DownDip enumerates rectangular blocks on grid parents and grows trace parents incrementally
	DownDip Kind = "downdip"
	// ConnectionPoints only ends clusters at connection points or parent ends
	ConnectionPoints Kind = "points"
)

// ErrUnknownKind is returned for an unrecognised strategy name
var ErrUnknownKind = errors.New("unknown permutation strategy")

// Kinds returns every strategy name
func Kinds() []string {
	return []string{string(Incremental), string(DownDip), string(ConnectionPoints)}
}

// ParseKind parses a strategy name. "ucerf3" is accepted for Incremental.
func ParseKind(s string) (Kind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if k == "ucerf3" {
		return Incremental, nil
	}
	if !slices.Contains(Kinds(), k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return Kind(k), nil
}

// Strategy proposes clusters for a growing rupture
type Strategy interface {
	// Name returns the strategy kind
	Name() string

	// Permutations returns every cluster on parentID whose first subsection is start,
	// in a deterministic order.
	Permutations(parentID, start int) []rupture.Cluster
}

// New creates the strategy of the given kind over a connection graph.
func New(kind Kind, graph *connections.Graph, opts RectangleOptions) (Strategy, error) {
	sections := graph.Sections()
	switch kind {
	case Incremental:
		return &incremental{sections: sections}, nil
	case ConnectionPoints:
		return &connectionPoints{sections: sections, graph: graph}, nil
	case DownDip:
		if err := opts.validate(); err != nil {
			return nil, err
		}
		return &downDip{
			rectangles: &rectangles{sections: sections, opts: opts},
			fallback:   &incremental{sections: sections},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// traceRuns returns the id range of the trace parent holding start. ok is false
// for grid parents and for a start outside the parent.
func traceRuns(sections *faults.SectionList, parentID, start int) (first, last int, ok bool) {
	if sections.IsGridParent(parentID) {
		return 0, 0, false
	}
	p, found := sections.Parent(parentID)
	if !found || start < p.First || start >= p.First+p.Count {
		return 0, 0, false
	}
	return p.First, p.First + p.Count - 1, true
}

// run builds the cluster start, start+step, ..., end.
func run(parentID, start, end int) rupture.Cluster {
	step := 1
	if end < start {
		step = -1
	}
	ids := make([]int, 0, (end-start)*step+1)
	for id := start; ; id += step {
		ids = append(ids, id)
		if id == end {
			break
		}
	}
	return rupture.Cluster{ParentID: parentID, Sections: ids}
}

// incremental returns every forward run then every backward run from start.
type incremental struct {
	sections *faults.SectionList
}

func (s *incremental) Name() string { return string(Incremental) }

func (s *incremental) Permutations(parentID, start int) []rupture.Cluster {
	first, last, ok := traceRuns(s.sections, parentID, start)
	if !ok {
		return nil
	}
	out := make([]rupture.Cluster, 0, last-first+1)
	for end := start; end <= last; end++ {
		out = append(out, run(parentID, start, end))
	}
	for end := start - 1; end >= first; end-- {
		out = append(out, run(parentID, start, end))
	}
	return out
}

// connectionPoints ends runs only at subsections with a jump or at the parent's ends.
type connectionPoints struct {
	sections *faults.SectionList
	graph    *connections.Graph
}

func (s *connectionPoints) Name() string { return string(ConnectionPoints) }

func (s *connectionPoints) isPoint(id, first, last int) bool {
	return id == first || id == last || s.graph.HasConnections(id)
}

func (s *connectionPoints) Permutations(parentID, start int) []rupture.Cluster {
	first, last, ok := traceRuns(s.sections, parentID, start)
	if !ok {
		return nil
	}
	var out []rupture.Cluster
	for end := start; end <= last; end++ {
		if s.isPoint(end, first, last) {
			out = append(out, run(parentID, start, end))
		}
	}
	for end := start - 1; end >= first; end-- {
		if s.isPoint(end, first, last) {
			out = append(out, run(parentID, start, end))
		}
	}
	return out
}

// downDip uses rectangles on grid parents and incremental runs elsewhere.
type downDip struct {
	rectangles *rectangles
	fallback   *incremental
}

func (s *downDip) Name() string { return string(DownDip) }

func (s *downDip) Permutations(parentID, start int) []rupture.Cluster {
	if s.rectangles.sections.IsGridParent(parentID) {
		return s.rectangles.Permutations(parentID, start)
	}
	return s.fallback.Permutations(parentID, start)
}

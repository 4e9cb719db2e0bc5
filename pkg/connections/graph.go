package connections

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/geometry"
)

// DefaultMaxJumpDistance is the jump cutoff in km
const DefaultMaxJumpDistance = 5.0

var (
	// ErrInvalidDistance is returned for a non-positive or NaN jump cutoff
	ErrInvalidDistance = errors.New("max jump distance must be positive")
	// ErrUnknownSection is returned when a connection names a section outside the graph
	ErrUnknownSection = errors.New("section not in connection graph")
)

// Connection is a jump point from one subsection to a subsection on another parent.
type Connection struct {
	From       int
	To         int
	FromParent int
	ToParent   int
	Distance   float64 // km
	Azimuth    float64 // degrees, From midpoint to To midpoint
}

// Reverse returns the same connection seen from the other side
func (c Connection) Reverse(azimuth float64) Connection {
	return Connection{
		From:       c.To,
		To:         c.From,
		FromParent: c.ToParent,
		ToParent:   c.FromParent,
		Distance:   c.Distance,
		Azimuth:    azimuth,
	}
}

type parentPair struct {
	from, to int
}

// Graph holds the connections retained for a subsection list. It is built once
// and read-only afterwards, so enumeration workers share it without locking.
type Graph struct {
	sections        *faults.SectionList
	calc            *geometry.Calculator
	maxJumpDistance float64

	bySection map[int][]Connection
	byParents map[parentPair]Connection
	count     int
}

// Build connects every pair of parents at their closest subsection pair, provided that
// pair is within maxJumpDistance km. Ties on distance go to the lowest (lo, hi) id pair.
func Build(calc *geometry.Calculator, maxJumpDistance float64) (*Graph, error) {
	if maxJumpDistance <= 0 || math.IsNaN(maxJumpDistance) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDistance, maxJumpDistance)
	}
	list := calc.Sections()
	g := &Graph{
		sections:        list,
		calc:            calc,
		maxJumpDistance: maxJumpDistance,
		bySection:       make(map[int][]Connection),
		byParents:       make(map[parentPair]Connection),
	}

	idx := newGridIndex(maxJumpDistance)
	all := list.All()
	for i := range all {
		idx.insert(all[i].ID, all[i].Trace.Bounds())
	}

	type candidate struct {
		lo, hi int
		dist   float64
	}
	best := make(map[parentPair]candidate)

	for i := range all {
		a := &all[i]
		for _, b := range idx.near(a.Trace.Bounds().Expand(maxJumpDistance)) {
			if b <= a.ID || list.ParentOf(b) == a.ParentID {
				continue
			}
			d := calc.Distance(a.ID, b)
			if d > maxJumpDistance {
				continue
			}
			pp := parentPair{from: a.ParentID, to: list.ParentOf(b)}
			if pp.from > pp.to {
				pp.from, pp.to = pp.to, pp.from
			}
			cur, ok := best[pp]
			if !ok || d < cur.dist || (d == cur.dist && lessPair(a.ID, b, cur.lo, cur.hi)) {
				best[pp] = candidate{lo: a.ID, hi: b, dist: d}
			}
		}
	}

	for _, c := range best {
		fwd := Connection{
			From:       c.lo,
			To:         c.hi,
			FromParent: list.ParentOf(c.lo),
			ToParent:   list.ParentOf(c.hi),
			Distance:   c.dist,
			Azimuth:    calc.Azimuth(c.lo, c.hi),
		}
		g.add(fwd)
		g.add(fwd.Reverse(calc.Azimuth(c.hi, c.lo)))
	}
	for id := range g.bySection {
		conns := g.bySection[id]
		sort.Slice(conns, func(i, j int) bool { return conns[i].To < conns[j].To })
	}
	return g, nil
}

func lessPair(a1, b1, a2, b2 int) bool {
	if a1 != a2 {
		return a1 < a2
	}
	return b1 < b2
}

func (g *Graph) add(c Connection) {
	g.bySection[c.From] = append(g.bySection[c.From], c)
	g.byParents[parentPair{from: c.FromParent, to: c.ToParent}] = c
	g.count++
}

// Sections returns the subsection list the graph was built over
func (g *Graph) Sections() *faults.SectionList {
	return g.sections
}

// Calculator returns the shared distance/azimuth calculator
func (g *Graph) Calculator() *geometry.Calculator {
	return g.calc
}

// MaxJumpDistance returns the cutoff used to build the graph
func (g *Graph) MaxJumpDistance() float64 {
	return g.maxJumpDistance
}

// From returns the connections leaving a subsection, ordered by destination id.
func (g *Graph) From(id int) []Connection {
	return g.bySection[id]
}

// HasConnections reports whether any jump leaves subsection id
func (g *Graph) HasConnections(id int) bool {
	return len(g.bySection[id]) > 0
}

// Between returns the connection from parent a to parent b, if one was retained.
func (g *Graph) Between(fromParent, toParent int) (Connection, bool) {
	c, ok := g.byParents[parentPair{from: fromParent, to: toParent}]
	return c, ok
}

// Connected reports whether there is a registered jump from subsection a to b.
func (g *Graph) Connected(a, b int) bool {
	for _, c := range g.bySection[a] {
		if c.To == b {
			return true
		}
	}
	return false
}

// Lookup returns the registered connection a->b
func (g *Graph) Lookup(a, b int) (Connection, error) {
	for _, c := range g.bySection[a] {
		if c.To == b {
			return c, nil
		}
	}
	return Connection{}, fmt.Errorf("%w: no connection %d->%d", ErrUnknownSection, a, b)
}

// Count returns the number of directed connections
func (g *Graph) Count() int {
	return g.count
}

// All returns every directed connection ordered by (From, To).
func (g *Graph) All() []Connection {
	out := make([]Connection, 0, g.count)
	for _, conns := range g.bySection {
		out = append(out, conns...)
	}
	sort.Slice(out, func(i, j int) bool { return lessPair(out[i].From, out[i].To, out[j].From, out[j].To) })
	return out
}

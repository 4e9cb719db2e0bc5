package geometry

import (
	"sync"

	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/geo"
)

// pairKey is an unordered subsection-id pair with lo <= hi
type pairKey struct {
	lo, hi int
}

func keyOf(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// pairEntry holds both directions of a pair so one cache slot serves a->b and b->a.
type pairEntry struct {
	distance float64
	azLoHi   float64
	azHiLo   float64
}

// Calculator computes and caches distances and azimuths between subsections.
//
// Distance is the minimum distance between the two traces; azimuth is the bearing
// between trace midpoints. The cache only grows and is safe for concurrent readers,
// so worker goroutines may share one Calculator.
type Calculator struct {
	sections  *faults.SectionList
	midpoints []geo.Location
	base      int

	mu    sync.RWMutex
	cache map[pairKey]pairEntry
}

// NewCalculator creates a calculator over the subsection list
func NewCalculator(sections *faults.SectionList) *Calculator {
	all := sections.All()
	mids := make([]geo.Location, len(all))
	for i := range all {
		mids[i] = all[i].Trace.Midpoint()
	}
	base := 0
	if len(all) > 0 {
		base = all[0].ID
	}
	return &Calculator{
		sections:  sections,
		midpoints: mids,
		base:      base,
		cache:     make(map[pairKey]pairEntry),
	}
}

// Sections returns the subsection list backing the calculator
func (c *Calculator) Sections() *faults.SectionList {
	return c.sections
}

func (c *Calculator) lookup(a, b int) pairEntry {
	k := keyOf(a, b)

	c.mu.RLock()
	e, ok := c.cache[k]
	c.mu.RUnlock()
	if ok {
		return e
	}

	e = c.compute(k)

	c.mu.Lock()
	// another goroutine may have stored the same pure result first; either copy is fine
	c.cache[k] = e
	c.mu.Unlock()
	return e
}

func (c *Calculator) compute(k pairKey) pairEntry {
	lo := c.sections.Section(k.lo)
	hi := c.sections.Section(k.hi)
	mLo := c.midpoints[k.lo-c.base]
	mHi := c.midpoints[k.hi-c.base]
	return pairEntry{
		distance: geo.TraceDistance(lo.Trace, hi.Trace),
		azLoHi:   geo.Azimuth(mLo, mHi),
		azHiLo:   geo.Azimuth(mHi, mLo),
	}
}

// Distance returns the minimum trace-to-trace distance between subsections a and b in km.
func (c *Calculator) Distance(a, b int) float64 {
	if a == b {
		return 0
	}
	return c.lookup(a, b).distance
}

// Azimuth returns the bearing from subsection a to subsection b in degrees, in [-180, 180).
func (c *Calculator) Azimuth(a, b int) float64 {
	if a == b {
		return geo.NormalizeAzimuth(c.sections.Section(a).Trace.Strike())
	}
	e := c.lookup(a, b)
	if a < b {
		return e.azLoHi
	}
	return e.azHiLo
}

// Warm precomputes every trace-adjacent pair within each parent and every
// edge-adjacent pair within each grid, so the enumeration phase mostly reads.
func (c *Calculator) Warm() int {
	pairs := 0
	for _, p := range c.sections.Parents() {
		if g := c.sections.Grid(p.ID); g != nil {
			for r := 0; r < g.Rows(); r++ {
				for col := 0; col < g.Cols(); col++ {
					id, ok := g.At(r, col)
					if !ok {
						continue
					}
					if right, ok := g.At(r, col+1); ok {
						c.lookup(id, right)
						pairs++
					}
					if down, ok := g.At(r+1, col); ok {
						c.lookup(id, down)
						pairs++
					}
				}
			}
			continue
		}
		for id := p.First + 1; id < p.First+p.Count; id++ {
			c.lookup(id-1, id)
			pairs++
		}
	}
	return pairs
}

// CacheSize returns the number of cached pairs
func (c *Calculator) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

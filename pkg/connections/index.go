package connections

import (
	"math"

	"github.com/dd0wney/cluso-rupset/pkg/geo"
)

const (
	kmPerDegree = geo.EarthRadiusKm * math.Pi / 180
	minCellDeg  = 0.02
)

type cellKey struct {
	lat, lon int
}

// gridIndex is a uniform lat/lon bucket index over subsection bounding boxes.
// It only prunes candidate pairs; exact distances are still computed for every
// candidate it returns.
type gridIndex struct {
	cellDeg float64
	cells   map[cellKey][]int
	boxes   map[int]geo.BoundingBox
}

func newGridIndex(cellKm float64) *gridIndex {
	return &gridIndex{
		cellDeg: math.Max(cellKm/kmPerDegree, minCellDeg),
		cells:   make(map[cellKey][]int),
		boxes:   make(map[int]geo.BoundingBox),
	}
}

func (g *gridIndex) span(b geo.BoundingBox) (lo, hi cellKey) {
	lo = cellKey{lat: int(math.Floor(b.MinLat / g.cellDeg)), lon: int(math.Floor(b.MinLon / g.cellDeg))}
	hi = cellKey{lat: int(math.Floor(b.MaxLat / g.cellDeg)), lon: int(math.Floor(b.MaxLon / g.cellDeg))}
	return lo, hi
}

func (g *gridIndex) insert(id int, b geo.BoundingBox) {
	g.boxes[id] = b
	lo, hi := g.span(b)
	for la := lo.lat; la <= hi.lat; la++ {
		for lo2 := lo.lon; lo2 <= hi.lon; lo2++ {
			k := cellKey{lat: la, lon: lo2}
			g.cells[k] = append(g.cells[k], id)
		}
	}
}

// near returns the ids whose boxes intersect b, each once, in no particular order.
func (g *gridIndex) near(b geo.BoundingBox) []int {
	lo, hi := g.span(b)
	seen := make(map[int]struct{})
	var out []int
	for la := lo.lat; la <= hi.lat; la++ {
		for lo2 := lo.lon; lo2 <= hi.lon; lo2++ {
			for _, id := range g.cells[cellKey{lat: la, lon: lo2}] {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				if g.boxes[id].Intersects(b) {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

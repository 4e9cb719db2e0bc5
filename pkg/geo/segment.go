package geo

import "math"

// pointSegmentDistance returns the planar distance (km) from p to segment ab.
func pointSegmentDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

func cross(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// segmentsCross reports a proper or touching intersection of ab and cd in the plane.
func segmentsCross(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := cross(cx, cy, dx, dy, ax, ay)
	d2 := cross(cx, cy, dx, dy, bx, by)
	d3 := cross(ax, ay, bx, by, cx, cy)
	d4 := cross(ax, ay, bx, by, dx, dy)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// SegmentDistance returns the minimum distance in km between segments a1-a2 and b1-b2.
func SegmentDistance(a1, a2, b1, b2 Location) float64 {
	origin := a1
	ax, ay := planar(origin, a1)
	bx, by := planar(origin, a2)
	cx, cy := planar(origin, b1)
	dx, dy := planar(origin, b2)

	if segmentsCross(ax, ay, bx, by, cx, cy, dx, dy) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(ax, ay, cx, cy, dx, dy), pointSegmentDistance(bx, by, cx, cy, dx, dy)),
		math.Min(pointSegmentDistance(cx, cy, ax, ay, bx, by), pointSegmentDistance(dx, dy, ax, ay, bx, by)),
	)
}

// TraceDistance returns the minimum distance in km between any two segments of a and b.
func TraceDistance(a, b Trace) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	if len(a) == 1 && len(b) == 1 {
		return Distance(a[0], b[0])
	}
	// a single point is treated as a degenerate segment
	if len(a) == 1 {
		a = Trace{a[0], a[0]}
	}
	if len(b) == 1 {
		b = Trace{b[0], b[0]}
	}

	best := math.Inf(1)
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			d := SegmentDistance(a[i-1], a[i], b[j-1], b[j])
			if d < best {
				best = d
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}

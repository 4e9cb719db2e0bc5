package geo

import (
	"fmt"
	"math"
)

// Trace is an ordered polyline of surface locations describing the top of a fault.
type Trace []Location

// Length returns the sum of the great-circle lengths of all trace segments in km.
func (t Trace) Length() float64 {
	total := 0.0
	for i := 1; i < len(t); i++ {
		total += Distance(t[i-1], t[i])
	}
	return total
}

// First returns the first trace point
func (t Trace) First() Location { return t[0] }

// Last returns the last trace point
func (t Trace) Last() Location { return t[len(t)-1] }

// Strike returns the azimuth from the first to the last trace point.
func (t Trace) Strike() float64 {
	return Azimuth(t.First(), t.Last())
}

// PointAlong returns the location at distKm along the trace, clamped to its ends.
func (t Trace) PointAlong(distKm float64) Location {
	if distKm <= 0 {
		return t.First()
	}
	walked := 0.0
	for i := 1; i < len(t); i++ {
		seg := Distance(t[i-1], t[i])
		if walked+seg >= distKm {
			return Destination(t[i-1], Azimuth(t[i-1], t[i]), distKm-walked)
		}
		walked += seg
	}
	return t.Last()
}

// Midpoint returns the location halfway along the trace.
func (t Trace) Midpoint() Location {
	return t.PointAlong(t.Length() / 2)
}

// Split divides the trace into n pieces of equal length. Original vertices are
// kept inside the piece they fall in; cut points are interpolated along the
// great circle of the segment they fall on.
func (t Trace) Split(n int) ([]Trace, error) {
	if len(t) < 2 {
		return nil, ErrEmptyTrace
	}
	if n < 1 {
		return nil, fmt.Errorf("cannot split trace into %d pieces", n)
	}
	total := t.Length()
	if total <= 0 {
		return nil, fmt.Errorf("cannot split zero-length trace")
	}
	pieceLen := total / float64(n)

	pieces := make([]Trace, 0, n)
	current := Trace{t[0]}
	remaining := pieceLen // distance left to fill in the current piece

	for i := 1; i < len(t); i++ {
		from := t[i-1]
		to := t[i]
		segLeft := Distance(from, to)
		az := Azimuth(from, to)

		for len(pieces) < n-1 && segLeft >= remaining {
			cut := Destination(from, az, remaining)
			current = append(current, cut)
			pieces = append(pieces, current)

			current = Trace{cut}
			from = cut
			segLeft = Distance(from, to)
			az = Azimuth(from, to)
			remaining = pieceLen
		}
		remaining -= segLeft
		current = append(current, to)
	}
	pieces = append(pieces, current)

	return pieces, nil
}

// BoundingBox is an axis-aligned lat/lon box
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Bounds returns the bounding box of the trace
func (t Trace) Bounds() BoundingBox {
	b := BoundingBox{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
	}
	for _, l := range t {
		b.MinLat = math.Min(b.MinLat, l.Lat)
		b.MaxLat = math.Max(b.MaxLat, l.Lat)
		b.MinLon = math.Min(b.MinLon, l.Lon)
		b.MaxLon = math.Max(b.MaxLon, l.Lon)
	}
	return b
}

// Expand grows the box by distKm on every side.
func (b BoundingBox) Expand(distKm float64) BoundingBox {
	dLat := degrees(distKm / EarthRadiusKm)
	maxAbsLat := math.Min(89.9, math.Max(math.Abs(b.MinLat), math.Abs(b.MaxLat))+dLat)
	dLon := dLat / math.Cos(radians(maxAbsLat))
	return BoundingBox{
		MinLat: b.MinLat - dLat, MaxLat: b.MaxLat + dLat,
		MinLon: b.MinLon - dLon, MaxLon: b.MaxLon + dLon,
	}
}

// Intersects reports whether two boxes overlap
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MinLat <= o.MaxLat && o.MinLat <= b.MaxLat &&
		b.MinLon <= o.MaxLon && o.MinLon <= b.MaxLon
}

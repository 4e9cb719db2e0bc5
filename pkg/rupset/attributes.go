package rupset

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-rupset/pkg/faults"
	"github.com/dd0wney/cluso-rupset/pkg/scaling"
)

// Attributes are the scalar properties of one rupture.
type Attributes struct {
	Area         float64 // m², reduced for aseismicity
	AreaOriginal float64 // m²
	Length       float64 // m
	Width        float64 // m, original area over length
	Rake         float64 // degrees in (-180, 180]
	Magnitude    float64
	AverageSlip  float64 // m
}

// ComputeAttributes sums area and length over the subsections, averages rake
// weighted by area, and applies the scaling relationship.
func ComputeAttributes(sections *faults.SectionList, rel scaling.Relationship, ids []int) (Attributes, error) {
	var (
		a          Attributes
		sinW, cosW float64
		lengthKm   float64
	)
	for _, id := range ids {
		s, err := sections.Get(id)
		if err != nil {
			return Attributes{}, err
		}
		a.Area += s.AreaReduced
		a.AreaOriginal += s.AreaOriginal
		lengthKm += s.Length()

		r := s.Rake * math.Pi / 180
		sinW += s.AreaReduced * math.Sin(r)
		cosW += s.AreaReduced * math.Cos(r)
	}
	a.Length = lengthKm * 1e3
	if a.Length > 0 {
		a.Width = a.AreaOriginal / a.Length
	}
	a.Rake = normalizeRake(math.Atan2(sinW, cosW) * 180 / math.Pi)

	var err error
	if a.Magnitude, err = rel.Magnitude(a.Area, a.Length, a.Width); err != nil {
		return Attributes{}, fmt.Errorf("magnitude: %w", err)
	}
	if a.AverageSlip, err = rel.AverageSlip(a.Area, a.Length, a.Width); err != nil {
		return Attributes{}, fmt.Errorf("average slip: %w", err)
	}
	return a, nil
}

// normalizeRake maps an angle into (-180, 180]
func normalizeRake(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg <= -180 {
		deg += 360
	} else if deg > 180 {
		deg -= 360
	}
	return deg
}

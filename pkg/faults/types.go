package faults

import (
	"github.com/dd0wney/cluso-rupset/pkg/geo"
)

// FaultSection is a parent fault section as supplied by the catalogue loader.
// The core treats it as read-only.
type FaultSection struct {
	ID           int       `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Trace        geo.Trace `json:"trace" yaml:"trace"`
	Dip          float64   `json:"dip" yaml:"dip"`                       // degrees
	DownDipWidth float64   `json:"down_dip_width" yaml:"down_dip_width"` // km, not reduced for aseismicity
	SlipRate     float64   `json:"slip_rate" yaml:"slip_rate"`           // mm/yr
	Rake         float64   `json:"rake" yaml:"rake"`                     // degrees
	Aseismicity  float64   `json:"aseismicity" yaml:"aseismicity"`       // fraction of area released aseismically, [0,1)
}

// Subsection is a length-bounded piece of exactly one parent section.
// Subsections are created once by Subdivide (or BuildDownDipGrid) and never mutated.
type Subsection struct {
	ID           int
	ParentID     int
	ParentName   string
	Name         string
	Index        int // position within the parent, in trace order
	Trace        geo.Trace
	Dip          float64
	DownDipWidth float64
	SlipRate     float64
	Rake         float64
	Aseismicity  float64

	// AreaOriginal and AreaReduced are in m². AreaReduced removes the aseismic fraction.
	AreaOriginal float64
	AreaReduced  float64
}

// Length returns the trace length in km
func (s *Subsection) Length() float64 {
	return s.Trace.Length()
}

// Area returns the subsection area in m², optionally reduced for aseismicity.
func (s *Subsection) Area(reduced bool) float64 {
	if reduced {
		return s.AreaReduced
	}
	return s.AreaOriginal
}

// ReducedDownDipWidth returns the down-dip width in km after removing the aseismic fraction.
func (s *Subsection) ReducedDownDipWidth() float64 {
	return s.DownDipWidth * (1 - s.Aseismicity)
}

// SlipRateMeters returns the slip rate in m/yr
func (s *Subsection) SlipRateMeters() float64 {
	return s.SlipRate * 1e-3
}

func areas(lengthKm, widthKm, aseismicity float64) (orig, reduced float64) {
	orig = lengthKm * widthKm * 1e6
	reduced = orig * (1 - aseismicity)
	return orig, reduced
}

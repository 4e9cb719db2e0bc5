package faults

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-rupset/pkg/geo"
)

// SyntheticOptions describes a generated chain of crustal faults used for
// benchmarks and tests when no catalogue is supplied.
type SyntheticOptions struct {
	NumFaults    int
	FirstID      int
	Origin       geo.Location
	Strike       float64 // degrees
	LengthKm     float64
	GapKm        float64 // along-strike gap between consecutive faults
	OffsetKm     float64 // across-strike offset of every second fault
	BendDeg      float64 // strike change applied to every fault after the first
	DownDipWidth float64
	Dip          float64
	Rake         float64
	SlipRate     float64
}

// DefaultSyntheticOptions returns a chain of ten 20 km faults with 3 km steps.
func DefaultSyntheticOptions() SyntheticOptions {
	return SyntheticOptions{
		NumFaults:    10,
		Origin:       geo.NewLocation(-41.0, 174.0),
		Strike:       45,
		LengthKm:     20,
		GapKm:        3,
		OffsetKm:     1,
		DownDipWidth: 15,
		Dip:          60,
		Rake:         180,
		SlipRate:     5,
	}
}

// Synthetic generates an en-echelon chain of straight faults.
func Synthetic(opts SyntheticOptions) []FaultSection {
	sections := make([]FaultSection, 0, opts.NumFaults)
	start := opts.Origin
	strike := opts.Strike

	for i := 0; i < opts.NumFaults; i++ {
		if i > 0 {
			strike += opts.BendDeg
		}
		offset := 0.0
		if i%2 == 1 {
			offset = opts.OffsetKm
		}
		first := geo.Destination(start, strike+90, offset)
		mid := geo.Destination(first, strike, opts.LengthKm/2)
		last := geo.Destination(mid, geo.Azimuth(first, mid), opts.LengthKm/2)

		sections = append(sections, FaultSection{
			ID:           opts.FirstID + i,
			Name:         fmt.Sprintf("Synthetic Fault %d", i),
			Trace:        geo.Trace{first, mid, last},
			Dip:          opts.Dip,
			DownDipWidth: opts.DownDipWidth,
			SlipRate:     opts.SlipRate,
			Rake:         opts.Rake,
		})

		// next fault starts one gap beyond the unshifted end of this one
		end := geo.Destination(first, strike+90, -offset)
		end = geo.Destination(end, strike, opts.LengthKm)
		start = geo.Destination(end, strike, opts.GapKm)
	}
	return sections
}

// SyntheticInterface generates a rows x cols subduction interface with square-ish tiles.
func SyntheticInterface(parentID int, name string, origin geo.Location, strike float64, rows, cols int, tileKm float64) InterfaceFault {
	const dip = 15.0
	horizontal := tileKm * math.Cos(dip*math.Pi/180)

	tiles := make([]Tile, 0, rows*cols)
	for r := 0; r < rows; r++ {
		rowStart := geo.Destination(origin, strike+90, float64(r)*horizontal)
		for c := 0; c < cols; c++ {
			a := geo.Destination(rowStart, strike, float64(c)*tileKm)
			b := geo.Destination(rowStart, strike, float64(c+1)*tileKm)
			tiles = append(tiles, Tile{
				Row:          r,
				Col:          c,
				Trace:        geo.Trace{a, b},
				DownDipWidth: tileKm,
				Dip:          dip,
				Rake:         90,
				SlipRate:     20,
			})
		}
	}
	return InterfaceFault{
		Parent: FaultSection{ID: parentID, Name: name, Dip: dip, DownDipWidth: float64(rows) * tileKm, Rake: 90, SlipRate: 20},
		Tiles:  tiles,
	}
}

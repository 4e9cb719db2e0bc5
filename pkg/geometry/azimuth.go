package geometry

import "math"

// AzimuthCalc is the subset of Calculator the azimuth metrics need.
type AzimuthCalc interface {
	Azimuth(a, b int) float64
}

// AzimuthDifference returns the signed change from az1 to az2, normalized into (-180, 180].
func AzimuthDifference(az1, az2 float64) float64 {
	d := math.Mod(az2-az1, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// JumpAzimuthChange returns the change between the last segment before a jump
// (beforeFrom->beforeTo) and the first segment after it (afterFrom->afterTo).
func JumpAzimuthChange(calc AzimuthCalc, beforeFrom, beforeTo, afterFrom, afterTo int) float64 {
	return AzimuthDifference(calc.Azimuth(beforeFrom, beforeTo), calc.Azimuth(afterFrom, afterTo))
}

// CumulativeAzimuthChange sums the absolute azimuth change at every interior
// subsection of the ordered list.
func CumulativeAzimuthChange(calc AzimuthCalc, ids []int) float64 {
	total := 0.0
	for i := 2; i < len(ids); i++ {
		before := calc.Azimuth(ids[i-2], ids[i-1])
		after := calc.Azimuth(ids[i-1], ids[i])
		total += math.Abs(AzimuthDifference(before, after))
	}
	return total
}

// TotalAzimuthChange returns |overall - segment| where overall is the azimuth from
// the first to the last subsection and segment is the azimuth of ids[seg]->ids[seg+1].
func TotalAzimuthChange(calc AzimuthCalc, ids []int, seg int) float64 {
	if len(ids) < 2 || seg < 0 || seg+1 >= len(ids) {
		return 0
	}
	overall := calc.Azimuth(ids[0], ids[len(ids)-1])
	return math.Abs(AzimuthDifference(overall, calc.Azimuth(ids[seg], ids[seg+1])))
}

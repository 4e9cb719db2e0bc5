package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0072

// ErrEmptyTrace is returned when an operation needs at least two trace points.
var ErrEmptyTrace = fmt.Errorf("trace has fewer than two points")

// Location is a point on the earth surface (degrees) with an optional depth in km.
type Location struct {
	Lat   float64 `json:"lat" yaml:"lat"`
	Lon   float64 `json:"lon" yaml:"lon"`
	Depth float64 `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// NewLocation creates a surface location
func NewLocation(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon}
}

func (l Location) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", l.Lat, l.Lon)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the great-circle surface distance between a and b in km (haversine).
func Distance(a, b Location) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Azimuth returns the initial bearing from a to b in degrees, normalized to [-180, 180).
func Azimuth(a, b Location) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return NormalizeAzimuth(degrees(math.Atan2(y, x)))
}

// NormalizeAzimuth maps any angle in degrees into [-180, 180).
func NormalizeAzimuth(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < -180 {
		deg += 360
	}
	if deg >= 180 {
		deg -= 360
	}
	return deg
}

// Destination returns the location reached by travelling distKm from start along azimuthDeg.
func Destination(start Location, azimuthDeg, distKm float64) Location {
	lat1 := radians(start.Lat)
	lon1 := radians(start.Lon)
	az := radians(azimuthDeg)
	ad := distKm / EarthRadiusKm

	sinLat2 := math.Sin(lat1)*math.Cos(ad) + math.Cos(lat1)*math.Sin(ad)*math.Cos(az)
	lat2 := math.Asin(sinLat2)
	lon2 := lon1 + math.Atan2(math.Sin(az)*math.Sin(ad)*math.Cos(lat1), math.Cos(ad)-math.Sin(lat1)*sinLat2)

	return Location{
		Lat:   degrees(lat2),
		Lon:   NormalizeAzimuth(degrees(lon2)),
		Depth: start.Depth,
	}
}

// planar projects l onto a local flat plane (km) centred on origin.
// Accurate to well under 1% for the tens-of-km separations used for jump distances.
func planar(origin, l Location) (x, y float64) {
	kmPerDeg := EarthRadiusKm * math.Pi / 180
	x = (l.Lon - origin.Lon) * kmPerDeg * math.Cos(radians((origin.Lat+l.Lat)/2))
	y = (l.Lat - origin.Lat) * kmPerDeg
	return x, y
}

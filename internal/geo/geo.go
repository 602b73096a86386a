package geo

import (
	"math"

	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceKm returns the haversine great-circle distance between two points
// in kilometers. Symmetric, zero for identical points.
func DistanceKm(a, b models.Location) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))

	return EarthRadiusKm * c
}

// Lerp linearly interpolates between two points. t is clamped to [0,1].
// Straight-line interpolation, not road routing; used by the motion feed.
func Lerp(a, b models.Location, t float64) models.Location {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return models.Location{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lon: a.Lon + (b.Lon-a.Lon)*t,
	}
}

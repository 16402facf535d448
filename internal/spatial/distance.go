package spatial

import (
	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two points in meters
// using the Haversine formula
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Speed returns the instantaneous speed in m/s between two timestamped positions.
// A non-positive elapsed time yields 0.
func Speed(lat1, lon1 float64, t1 int64, lat2, lon2 float64, t2 int64) float64 {
	elapsed := t2 - t1
	if elapsed <= 0 {
		return 0
	}
	return HaversineDistance(lat1, lon1, lat2, lon2) / float64(elapsed)
}

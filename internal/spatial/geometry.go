package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point builds a planar point from longitude (x) and latitude (y)
func Point(lng, lat float64) orb.Point {
	return orb.Point{lng, lat}
}

// LineString converts ordered [lng, lat] pairs into a polyline
func LineString(coords [][2]float64) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c[0], c[1]}
	}
	return ls
}

// PlanarDistance returns the euclidean distance between two points in degrees.
// It is not geodesic and is only meaningful for ranking nearby candidates.
func PlanarDistance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// PlanarDistanceToLine returns the planar distance from p to the closest
// point of the polyline
func PlanarDistanceToLine(p orb.Point, ls orb.LineString) float64 {
	if len(ls) == 1 {
		return planar.Distance(p, ls[0])
	}
	return planar.DistanceFrom(ls, p)
}

// PathLength calculates the total length of a path of [lng, lat] pairs in meters
func PathLength(coords [][2]float64) float64 {
	if len(coords) < 2 {
		return 0
	}

	var totalDist float64
	for i := 1; i < len(coords); i++ {
		totalDist += HaversineDistance(coords[i-1][1], coords[i-1][0], coords[i][1], coords[i][0])
	}

	return totalDist
}

// SameCoordinate reports whether two [lng, lat] pairs agree within epsilon degrees
func SameCoordinate(a, b [2]float64, epsilon float64) bool {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx+dy*dy <= epsilon*epsilon
}

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// One degree of latitude on a 6371 km sphere
	d := HaversineDistance(0, 0, 1, 0)
	assert.InDelta(t, 111194.93, d, 0.5)

	assert.Zero(t, HaversineDistance(13.087, 80.21, 13.087, 80.21))

	// Symmetric
	assert.InDelta(t, HaversineDistance(13.0870, 80.2100, 13.0895, 80.2125),
		HaversineDistance(13.0895, 80.2125, 13.0870, 80.2100), 1e-9)
}

func TestSpeed(t *testing.T) {
	assert.InDelta(t, 111194.93/100, Speed(0, 0, 0, 1, 0, 100), 0.01)
	assert.Zero(t, Speed(0, 0, 10, 1, 0, 10), "zero elapsed time")
	assert.Zero(t, Speed(0, 0, 10, 1, 0, 5), "time going backwards")
}

func TestPlanarDistanceToLine(t *testing.T) {
	ls := LineString([][2]float64{{0, 0}, {0, 1}, {1, 1}})

	assert.InDelta(t, 0.5, PlanarDistanceToLine(Point(0.5, 0.2), ls), 1e-12)
	assert.InDelta(t, 0.0, PlanarDistanceToLine(Point(0, 0.7), ls), 1e-12)
	// Beyond the end of the polyline the distance is to the endpoint
	assert.InDelta(t, 1.0, PlanarDistanceToLine(Point(2, 1), ls), 1e-12)
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength(nil))
	assert.Zero(t, PathLength([][2]float64{{80.21, 13.08}}))

	coords := [][2]float64{{0, 0}, {0, 1}, {0, 2}}
	assert.InDelta(t, 2*111194.93, PathLength(coords), 1)
}

func TestSameCoordinate(t *testing.T) {
	assert.True(t, SameCoordinate([2]float64{80.21, 13.08}, [2]float64{80.21, 13.08}, 0))
	assert.True(t, SameCoordinate([2]float64{80.21, 13.08}, [2]float64{80.2100000001, 13.08}, 1e-7))
	assert.False(t, SameCoordinate([2]float64{80.21, 13.08}, [2]float64{80.2101, 13.08}, 1e-7))
}

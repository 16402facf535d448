package trip

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/segment"
)

// Three consecutive ~111 m segments running north along lng 0
func testIndex(t *testing.T) *segment.Index {
	t.Helper()
	idx, err := segment.NewIndex([]models.Segment{
		{SegmentID: 1, U: 10, V: 11, Length: 111, Coordinates: [][2]float64{{0, 0}, {0, 0.001}}},
		{SegmentID: 2, U: 11, V: 12, Length: 111, Coordinates: [][2]float64{{0, 0.001}, {0, 0.002}}},
		{SegmentID: 3, U: 12, V: 13, Length: 111, Coordinates: [][2]float64{{0, 0.002}, {0, 0.003}}},
	})
	require.NoError(t, err)
	return idx
}

func pt(lat float64, ts int64) models.GPSPoint {
	return models.GPSPoint{Lat: lat, Lng: 0, Timestamp: ts}
}

// Walk through segments 1, 2 and 3 and stand still on the last one
func walkThenStop() []models.GPSPoint {
	return []models.GPSPoint{
		pt(0.0000, 0),  // no previous point, speed 0
		pt(0.0002, 16), // ~1.4 m/s, trip starts on segment 1
		pt(0.0004, 32),
		pt(0.0012, 48), // enters segment 2
		pt(0.0022, 64), // enters segment 3
		pt(0.0022, 74),
		pt(0.0022, 84),
		pt(0.0022, 94), // third still sample ends the trip
	}
}

func TestSegmenter_WalkThenStop(t *testing.T) {
	events, err := Segment(testIndex(t), DefaultConfig(), walkThenStop())
	require.NoError(t, err)

	assert.Equal(t, []models.SegmentCompleted{
		{SegmentID: 1, Timestamp: 48, Reason: models.ReasonTransition},
		{SegmentID: 2, Timestamp: 64, Reason: models.ReasonTransition},
		{SegmentID: 3, Timestamp: 94, Reason: models.ReasonStillness},
	}, events)
}

func TestSegmenter_States(t *testing.T) {
	s := NewSegmenter(testIndex(t), DefaultConfig())
	assert.Equal(t, models.TripNotStarted, s.State())

	points := walkThenStop()
	_, err := s.Feed(points[0])
	require.NoError(t, err)
	assert.Equal(t, models.TripNotStarted, s.State())

	_, err = s.Feed(points[1])
	require.NoError(t, err)
	assert.Equal(t, models.TripTracking, s.State())

	for _, p := range points[2:] {
		_, err = s.Feed(p)
		require.NoError(t, err)
	}
	assert.True(t, s.Done())
	assert.Equal(t, len(points), s.Points())
	assert.Greater(t, s.DistanceMeters(), 200.0)

	// Terminal state ignores further input
	events, err := s.Feed(pt(0.0005, 200))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, len(points), s.Points())
	assert.Empty(t, s.Stop(300))
}

func TestSegmenter_NoMovement(t *testing.T) {
	points := []models.GPSPoint{pt(0.0005, 0), pt(0.0005, 10), pt(0.0005, 20), pt(0.0005, 30), pt(0.0005, 40)}

	s := NewSegmenter(testIndex(t), DefaultConfig())
	for _, p := range points {
		events, err := s.Feed(p)
		require.NoError(t, err)
		assert.Empty(t, events)
	}
	assert.Equal(t, models.TripNotStarted, s.State())
}

func TestSegmenter_ShortTraces(t *testing.T) {
	events, err := Segment(testIndex(t), DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = Segment(testIndex(t), DefaultConfig(), []models.GPSPoint{pt(0.0005, 0)})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSegmenter_NonIncreasingTimestamps(t *testing.T) {
	// Equal or decreasing timestamps produce speed 0 and never start a trip
	points := []models.GPSPoint{pt(0, 100), pt(0.0005, 100), pt(0.0015, 90)}

	s := NewSegmenter(testIndex(t), DefaultConfig())
	for _, p := range points {
		_, err := s.Feed(p)
		require.NoError(t, err)
	}
	assert.Equal(t, models.TripNotStarted, s.State())
}

func TestSegmenter_NoFlushWithoutStillness(t *testing.T) {
	// The trace ends while the walker is still moving on segment 3
	events, err := Segment(testIndex(t), DefaultConfig(), walkThenStop()[:5])
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].SegmentID)
	assert.Equal(t, int64(2), events[1].SegmentID)
}

func TestSegmenter_TransitionAndStillnessOnSamePoint(t *testing.T) {
	points := []models.GPSPoint{
		pt(0, 0),
		pt(0.0002, 16),
		pt(0.0008, 32),
		pt(0.00095, 1032), // creeping, still sample 1
		pt(0.00098, 2032), // still sample 2
		pt(0.00102, 3032), // crosses into segment 2 and ends the trip
	}

	events, err := Segment(testIndex(t), DefaultConfig(), points)
	require.NoError(t, err)

	assert.Equal(t, []models.SegmentCompleted{
		{SegmentID: 1, Timestamp: 3032, Reason: models.ReasonTransition},
		{SegmentID: 2, Timestamp: 3032, Reason: models.ReasonStillness},
	}, events)
}

func TestSegmenter_StillCounterResets(t *testing.T) {
	points := []models.GPSPoint{
		pt(0, 0),
		pt(0.0002, 16),
		pt(0.0002, 26), // still 1
		pt(0.0002, 36), // still 2
		pt(0.0004, 52), // moving again, counter resets
		pt(0.0004, 62),
		pt(0.0004, 72),
	}

	s := NewSegmenter(testIndex(t), DefaultConfig())
	for _, p := range points {
		events, err := s.Feed(p)
		require.NoError(t, err)
		assert.Empty(t, events)
	}
	assert.Equal(t, models.TripTracking, s.State())
}

func TestSegmenter_Stop(t *testing.T) {
	s := NewSegmenter(testIndex(t), DefaultConfig())
	for _, p := range walkThenStop()[:4] {
		_, err := s.Feed(p)
		require.NoError(t, err)
	}

	events := s.Stop(60)
	assert.Equal(t, []models.SegmentCompleted{
		{SegmentID: 2, Timestamp: 60, Reason: models.ReasonCancelled},
	}, events)
	assert.True(t, s.Done())

	// Nothing was tracked yet
	s = NewSegmenter(testIndex(t), DefaultConfig())
	_, err := s.Feed(pt(0, 0))
	require.NoError(t, err)
	assert.Empty(t, s.Stop(10))
	assert.True(t, s.Done())
}

type failingMatcher struct{}

func (failingMatcher) Nearest(float64, float64) (int64, error) {
	return 0, errors.New("index unavailable")
}

func TestSegmenter_MatcherError(t *testing.T) {
	s := NewSegmenter(failingMatcher{}, DefaultConfig())

	_, err := s.Feed(pt(0, 0))
	require.NoError(t, err, "no lookup before the trip starts")

	_, err = s.Feed(pt(0.0002, 16))
	assert.ErrorContains(t, err, "index unavailable")
}

func TestSegmenter_Events(t *testing.T) {
	s := NewSegmenter(testIndex(t), DefaultConfig())

	var ids []int64
	for ev, err := range s.Events(slices.Values(walkThenStop())) {
		require.NoError(t, err)
		ids = append(ids, ev.SegmentID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	// Early break
	s = NewSegmenter(testIndex(t), DefaultConfig())
	for ev, err := range s.Events(slices.Values(walkThenStop())) {
		require.NoError(t, err)
		assert.Equal(t, int64(1), ev.SegmentID)
		break
	}
	assert.Equal(t, models.TripTracking, s.State())
}

func TestSegmenter_Stream(t *testing.T) {
	points := make(chan models.GPSPoint)
	go func() {
		defer close(points)
		for _, p := range walkThenStop() {
			points <- p
		}
	}()

	s := NewSegmenter(testIndex(t), DefaultConfig())
	out, errc := s.Stream(context.Background(), points)

	var got []models.SegmentCompleted
	for ev := range out {
		got = append(got, ev)
	}
	require.NoError(t, <-errc)
	require.Len(t, got, 3)
	assert.Equal(t, models.ReasonStillness, got[2].Reason)
}

func TestSegmenter_StreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	points := make(chan models.GPSPoint)

	s := NewSegmenter(testIndex(t), DefaultConfig())
	out, errc := s.Stream(ctx, points)

	cancel()
	_, open := <-out
	assert.False(t, open)
	assert.NoError(t, <-errc)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/trip"
)

const segments = `[
	{"segment_id": 1, "u": 10, "v": 11, "length": 111, "coordinates": [[0, 0], [0, 0.001]]},
	{"segment_id": 2, "u": 11, "v": 12, "length": 111, "coordinates": [[0, 0.001], [0, 0.002]]},
	{"segment_id": 3, "u": 12, "v": 13, "length": 111, "coordinates": [[0, 0.002], [0, 0.003]]}
]`

const gps = `[
	{"lat": 0.0000, "lng": 0, "timestamp": 1700000000},
	{"lat": 0.0002, "lng": 0, "timestamp": 1700000016},
	{"lat": 0.0004, "lng": 0, "timestamp": 1700000032},
	{"lat": 0.0012, "lng": 0, "timestamp": 1700000048},
	{"lat": 0.0022, "lng": 0, "timestamp": 1700000064},
	{"lat": 0.0022, "lng": 0, "timestamp": 1700000074},
	{"lat": 0.0022, "lng": 0, "timestamp": 1700000084},
	{"lat": 0.0022, "lng": 0, "timestamp": 1700000094},
	{"lat": 0.0030, "lng": 0, "timestamp": 1700000110}
]`

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		SegmentsPath: write(t, dir, "segments.json", segments),
		GPSPath:      write(t, dir, "gps.json", gps),
		RatingsPath:  write(t, dir, "ratings.json", `[{"rating": 5}, {"rating": 1, "tags": ["dark"]}]`),
		From:         "0,0",
		To:           "0.003, 0",
		Trip:         trip.DefaultConfig(),
	}

	var out bytes.Buffer
	require.NoError(t, replay(context.Background(), opts, zap.NewNop(), &out))

	var res Output
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))

	assert.Equal(t, []models.SegmentCompleted{
		{SegmentID: 1, Timestamp: 1700000048, Reason: models.ReasonTransition},
		{SegmentID: 2, Timestamp: 1700000064, Reason: models.ReasonTransition},
		{SegmentID: 3, Timestamp: 1700000094, Reason: models.ReasonStillness},
	}, res.Events)
	assert.Equal(t, 1, res.Skipped)

	require.Len(t, res.Scores, 2)
	assert.Greater(t, res.Scores["1"].Score, res.Scores["2"].Score)
	assert.NotContains(t, res.Scores, "3")

	require.NotNil(t, res.Route)
	assert.Equal(t, []int64{1, 2, 3}, res.Route.FastestSegmentIDs)
}

func TestReplay_InvalidRating(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		SegmentsPath: write(t, dir, "segments.json", segments),
		GPSPath:      write(t, dir, "gps.json", gps),
		RatingsPath:  write(t, dir, "ratings.json", `[{"rating": 7}]`),
		Trip:         trip.DefaultConfig(),
	}

	err := replay(context.Background(), opts, zap.NewNop(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLatLng(t *testing.T) {
	lat, lng, err := parseLatLng("13.08, 80.21")
	require.NoError(t, err)
	assert.Equal(t, 13.08, lat)
	assert.Equal(t, 80.21, lng)

	_, _, err = parseLatLng("13.08")
	assert.Error(t, err)
	_, _, err = parseLatLng("x,1")
	assert.Error(t, err)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/safetrace/safetrace-backend-go/internal/feedback"
	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
)

// A straight street of three segments heading north from (0, 0), plus an
// unreachable segment far away
func testSegments() []models.Segment {
	return []models.Segment{
		{SegmentID: 1, U: 10, V: 11, Length: 111, Coordinates: [][2]float64{{0, 0}, {0, 0.001}}},
		{SegmentID: 2, U: 11, V: 12, Length: 111, Coordinates: [][2]float64{{0, 0.001}, {0, 0.002}}},
		{SegmentID: 3, U: 12, V: 13, Length: 111, Coordinates: [][2]float64{{0, 0.002}, {0, 0.003}}},
		{SegmentID: 4, U: 20, V: 21, Length: 111, Coordinates: [][2]float64{{1, 1}, {1, 1.001}}},
	}
}

func testRegistry(t *testing.T) *network.Registry {
	t.Helper()
	snap, err := network.Build(testSegments(), 1, "test")
	require.NoError(t, err)
	return network.NewRegistry(snap, zap.NewNop())
}

type deps struct {
	registry *network.Registry
	store    *feedback.MemoryStore
	metrics  *metrics.Collector
	scores   *ScoreService
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	m := metrics.NewCollector("test")
	store := feedback.NewMemoryStore()
	return &deps{
		registry: testRegistry(t),
		store:    store,
		metrics:  m,
		scores:   NewScoreService(store, scoring.NewEngine(), nil, m, zaptest.NewLogger(t)),
	}
}

func (d *deps) rate(t *testing.T, segmentID int64, rating int, ts int64) {
	t.Helper()
	_, err := d.store.Append(context.Background(), models.FeedbackRecord{
		ID:          "r",
		SegmentID:   segmentID,
		Rating:      rating,
		Timestamp:   ts,
		Persona:     models.DefaultPersona,
		TrustWeight: 1,
	})
	require.NoError(t, err)
}

type recordingPublisher struct {
	mu    sync.Mutex
	saved []*models.ScoreSnapshot
	err   error
}

func (p *recordingPublisher) Save(ctx context.Context, snap *models.ScoreSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, snap)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saved)
}

var errPublish = errors.New("disk full")

func fixedClock(ts int64) func() time.Time {
	return func() time.Time { return time.Unix(ts, 0) }
}

func networkWithSegmentZero() (*network.Registry, error) {
	snap, err := network.Build([]models.Segment{
		{SegmentID: 0, U: 1, V: 2, Length: 50, Coordinates: [][2]float64{{0, 0}, {0, 0.0005}}},
	}, 1, "zero")
	if err != nil {
		return nil, err
	}
	return network.NewRegistry(snap, zap.NewNop()), nil
}

package service

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
)

const now = int64(1_700_000_000)

func TestScoreService_RecomputesOnNewFeedback(t *testing.T) {
	d := newDeps(t)
	d.scores.now = fixedClock(now)
	ctx := context.Background()

	empty, err := d.scores.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Version)
	assert.Empty(t, empty.Scores)

	d.rate(t, 1, 5, now)
	first, err := d.scores.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, now, first.ComputedAt)
	assert.InDelta(t, 1.0, first.Scores[1].Score, 1e-12)

	again, err := d.scores.Current(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again, "unchanged feedback reuses the snapshot")

	forced, err := d.scores.Recompute(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, forced)
	assert.Equal(t, first.Version, forced.Version)

	assert.Equal(t, 3.0, testutil.ToFloat64(d.metrics.ScoreRecomputes))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.SegmentsScored))
}

func TestScoreService_Publishes(t *testing.T) {
	d := newDeps(t)
	pub := &recordingPublisher{err: errPublish}
	svc := NewScoreService(d.store, scoring.NewEngine(), pub, d.metrics, zaptest.NewLogger(t))
	svc.now = fixedClock(now)

	d.rate(t, 2, 1, now)
	snap, err := svc.Current(context.Background())
	require.NoError(t, err, "publish failures do not fail the recompute")
	assert.Equal(t, 1, pub.count())
	assert.Equal(t, int64(1), snap.Version)
}

func TestScoreService_GetNeutralDefault(t *testing.T) {
	d := newDeps(t)

	sc, err := d.scores.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, scoring.NeutralScore, sc.Score)
	assert.Zero(t, sc.Confidence)
	assert.Zero(t, sc.NumFeedback)
}

func TestScoreService_ListAndExport(t *testing.T) {
	d := newDeps(t)
	d.scores.now = fixedClock(now)
	ctx := context.Background()

	d.rate(t, 3, 5, now)
	d.rate(t, 1, 1, now)
	d.rate(t, 1, 2, now)

	list, snap, err := d.scores.List(ctx, models.ScoreFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].SegmentID)
	assert.Equal(t, int64(3), list[1].SegmentID)
	assert.Equal(t, int64(3), snap.Version)
	assert.Equal(t, 2, list[0].NumFeedback)

	safe, _, err := d.scores.List(ctx, models.ScoreFilter{MinScore: 0.5})
	require.NoError(t, err)
	require.Len(t, safe, 1)
	assert.Equal(t, int64(3), safe[0].SegmentID)

	export, err := d.scores.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, export, 2)
	assert.Contains(t, export, "1")
	assert.Contains(t, export, "3")

	// (0.2 + 0.4) / 2 and 1 - exp(-0.5), rounded to three decimals
	assert.Equal(t, 0.3, export["1"].Score)
	assert.Equal(t, 0.393, export["1"].Confidence)
	assert.Equal(t, 2, export["1"].NumFeedback)
	assert.Equal(t, 0.221, export["3"].Confidence)

	// The live snapshot keeps full precision
	assert.InDelta(t, 1-math.Exp(-0.5), snap.Scores[1].Confidence, 1e-15)
}

func TestScoreService_Summary(t *testing.T) {
	d := newDeps(t)
	d.scores.now = fixedClock(now)

	d.rate(t, 1, 5, now)
	d.rate(t, 2, 1, now)
	d.rate(t, 2, 1, now)

	sum, err := d.scores.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.SegmentsCovered)
	assert.Equal(t, 3, sum.FeedbackCount)
	assert.InDelta(t, 0.2, sum.MinScore, 1e-12)
	assert.InDelta(t, 1.0, sum.MaxScore, 1e-12)
	assert.InDelta(t, 0.6, sum.MeanScore, 1e-12)
}

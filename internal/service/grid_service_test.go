package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

func TestGridService_GetGridCells(t *testing.T) {
	d := newDeps(t)
	d.scores.now = fixedClock(now)
	svc := NewGridService(d.registry, d.scores)
	ctx := context.Background()

	cells, _, err := svc.GetGridCells(ctx, models.GridFilter{})
	require.NoError(t, err)
	assert.Empty(t, cells, "unscored segments are not aggregated")

	d.rate(t, 1, 5, now)
	d.rate(t, 2, 1, now)
	d.rate(t, 4, 4, now)

	// Level 10 cells are ~0.35 degrees wide: segments 1 and 2 share a cell, 4 does not
	cells, snap, err := svc.GetGridCells(ctx, models.GridFilter{Level: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Version)
	require.Len(t, cells, 2)

	street := cells[0]
	assert.Equal(t, "L10_512_256", street.GridID)
	assert.Equal(t, 2, street.SegmentCount)
	assert.Equal(t, 2, street.FeedbackCount)
	assert.InDelta(t, 0.6, street.MeanScore, 1e-12)
	assert.InDelta(t, 0.2, street.MinScore, 1e-12)
	assert.LessOrEqual(t, street.MinLat, 0.0005)
	assert.Greater(t, street.MaxLat, 0.0005)

	assert.InDelta(t, 0.8, cells[1].MeanScore, 1e-12)

	bounded, _, err := svc.GetGridCells(ctx, models.GridFilter{Level: 10, MinLat: 0.5, MaxLat: 2, MinLon: 0.5, MaxLon: 2})
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, 1, bounded[0].SegmentCount)

	busy, _, err := svc.GetGridCells(ctx, models.GridFilter{Level: 10, MinFeedback: 2})
	require.NoError(t, err)
	assert.Len(t, busy, 1)
}

func TestGridService_Heatmap(t *testing.T) {
	d := newDeps(t)
	d.scores.now = fixedClock(now)
	svc := NewGridService(d.registry, d.scores)
	ctx := context.Background()

	empty, err := svc.Heatmap(ctx, 0, "")
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Equal(t, DefaultGridLevel, empty.GridLevel)
	assert.Equal(t, models.HeatmapDanger, empty.Metric)

	d.rate(t, 1, 1, now)
	d.rate(t, 1, 1, now)
	d.rate(t, 4, 5, now)

	danger, err := svc.Heatmap(ctx, 10, models.HeatmapDanger)
	require.NoError(t, err)
	require.Len(t, danger.Points, 2)
	assert.InDelta(t, 0.8, danger.Points[0].Intensity, 1e-12)
	assert.InDelta(t, 0.0, danger.Points[1].Intensity, 1e-12)
	assert.InDelta(t, 0.8, danger.MaxValue, 1e-12)

	counts, err := svc.Heatmap(ctx, 10, models.HeatmapFeedback)
	require.NoError(t, err)
	assert.Equal(t, 2.0, counts.MaxValue)
	assert.Equal(t, 1.0, counts.Points[0].Intensity)
	assert.Equal(t, 0.5, counts.Points[1].Intensity)

	_, err = svc.Heatmap(ctx, 10, "noise")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

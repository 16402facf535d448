package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrace/safetrace-backend-go/internal/scoring"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

func TestSegmentService_GetByID(t *testing.T) {
	d := newDeps(t)
	d.scores.now = fixedClock(now)
	svc := NewSegmentService(d.registry, d.scores)
	ctx := context.Background()

	d.rate(t, 2, 5, now)

	got, err := svc.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.U)
	require.NotNil(t, got.Score)
	assert.InDelta(t, 1.0, got.Score.Score, 1e-12)
	assert.Equal(t, 1, got.Score.NumFeedback)

	unrated, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, scoring.NeutralScore, unrated.Score.Score)

	_, err = svc.GetByID(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrSegmentNotFound)
}

func TestSegmentService_Nearest(t *testing.T) {
	d := newDeps(t)
	svc := NewSegmentService(d.registry, d.scores)

	got, err := svc.Nearest(context.Background(), 0.0015, 0.0001)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.SegmentID)

	got, err = svc.Nearest(context.Background(), 1.0004, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.SegmentID)
}

func TestSegmentService_Info(t *testing.T) {
	d := newDeps(t)
	info := NewSegmentService(d.registry, d.scores).Info()

	assert.Equal(t, int64(1), info.Version)
	assert.Equal(t, 4, info.Segments)
	assert.Equal(t, 6, info.Nodes)
	assert.Equal(t, 8, info.Edges)
	assert.Zero(t, info.NodeDrifts)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/safetrace/safetrace-backend-go/internal/auth"
	"github.com/safetrace/safetrace-backend-go/internal/feedback"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

type ackRecorder struct {
	trips    []string
	segments []int64
}

func (a *ackRecorder) Acknowledge(tripID string, segmentID int64) bool {
	a.trips = append(a.trips, tripID)
	a.segments = append(a.segments, segmentID)
	return true
}

func newFeedbackService(t *testing.T, d *deps, acks FeedbackAcknowledger) *FeedbackService {
	t.Helper()
	svc := NewFeedbackService(d.store, d.registry, acks, d.metrics, zaptest.NewLogger(t))
	svc.location = time.UTC
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC) }
	return svc
}

func TestFeedbackService_Submit(t *testing.T) {
	d := newDeps(t)
	svc := newFeedbackService(t, d, nil)

	res, err := svc.Submit(context.Background(), models.FeedbackInput{
		SegmentID: 2,
		Rating:    4,
		Tags:      []string{"well_lit", "crowded", "well_lit"},
	}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, feedback.Evening, res.TimeOfDay)

	snap, err := d.store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)

	rec := snap.Records[0]
	assert.Equal(t, []string{"well_lit", "crowded"}, rec.Tags)
	assert.Equal(t, models.DefaultPersona, rec.Persona)
	assert.Equal(t, models.DefaultTrustWeight, rec.TrustWeight)
	assert.Equal(t, time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC).Unix(), rec.Timestamp)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.FeedbackSubmitted.WithLabelValues("accepted")))
}

func TestFeedbackService_SubmitKeepsExplicitTimestamp(t *testing.T) {
	d := newDeps(t)
	svc := newFeedbackService(t, d, nil)

	// 07:00 UTC
	ts := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC).Unix()
	res, err := svc.Submit(context.Background(), models.FeedbackInput{SegmentID: 1, Rating: 3, Timestamp: ts}, nil)
	require.NoError(t, err)
	assert.Equal(t, feedback.Morning, res.TimeOfDay)
}

func TestFeedbackService_Rejects(t *testing.T) {
	negative, excessive := -0.5, models.MaxTrustWeight+1
	// The service clock reads 2026-03-02 21:30 UTC
	ahead := time.Date(2026, 3, 2, 21, 36, 0, 0, time.UTC).Unix()

	tests := []struct {
		name string
		in   models.FeedbackInput
		want *apperrors.DomainError
	}{
		{"rating too low", models.FeedbackInput{SegmentID: 1, Rating: 0}, apperrors.ErrInvalidRating},
		{"rating too high", models.FeedbackInput{SegmentID: 1, Rating: 6}, apperrors.ErrInvalidRating},
		{"unknown segment", models.FeedbackInput{SegmentID: 99, Rating: 3}, apperrors.ErrUnknownSegment},
		{"negative trust", models.FeedbackInput{SegmentID: 1, Rating: 3, TrustWeight: &negative}, apperrors.ErrInvalidTrustWeight},
		{"trust above cap", models.FeedbackInput{SegmentID: 1, Rating: 3, TrustWeight: &excessive}, apperrors.ErrInvalidTrustWeight},
		{"timestamp in the future", models.FeedbackInput{SegmentID: 1, Rating: 5, Timestamp: ahead}, apperrors.ErrFutureTimestamp},
		{"bad trip id", models.FeedbackInput{SegmentID: 1, Rating: 3, TripID: "not-a-uuid"}, apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t)
			svc := newFeedbackService(t, d, nil)

			_, err := svc.Submit(context.Background(), tt.in, nil)
			assert.ErrorIs(t, err, tt.want)

			version, err := d.store.Version(context.Background())
			require.NoError(t, err)
			assert.Zero(t, version, "rejected feedback is never stored")
			assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.FeedbackSubmitted.WithLabelValues("rejected")))
		})
	}
}

func TestFeedbackService_ClaimsOverrideBody(t *testing.T) {
	d := newDeps(t)
	svc := newFeedbackService(t, d, nil)

	bodyTrust, claimTrust := 5.0, 0.25
	claims := &auth.Claims{Persona: "woman", TrustWeight: &claimTrust}
	claims.Subject = "user-7"

	_, err := svc.Submit(context.Background(), models.FeedbackInput{
		SegmentID:   1,
		Rating:      2,
		Persona:     "runner",
		TrustWeight: &bodyTrust,
	}, claims)
	require.NoError(t, err)

	snap, err := d.store.Snapshot(context.Background())
	require.NoError(t, err)
	rec := snap.Records[0]
	assert.Equal(t, "woman", rec.Persona)
	assert.Equal(t, 0.25, rec.TrustWeight)
	assert.Equal(t, "user-7", rec.SubmittedBy)
	assert.Equal(t, []string{}, rec.Tags)
}

func TestFeedbackService_AcknowledgesTrip(t *testing.T) {
	d := newDeps(t)
	acks := &ackRecorder{}
	svc := newFeedbackService(t, d, acks)

	tripID := "3f0c5a56-8e49-4a4b-9d59-4c8cf1e1d2a0"
	_, err := svc.Submit(context.Background(), models.FeedbackInput{SegmentID: 3, Rating: 5, TripID: tripID}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{tripID}, acks.trips)
	assert.Equal(t, []int64{3}, acks.segments)

	_, err = svc.Submit(context.Background(), models.FeedbackInput{SegmentID: 3, Rating: 5}, nil)
	require.NoError(t, err)
	assert.Len(t, acks.trips, 1, "feedback without a trip acknowledges nothing")
}

func TestFeedbackService_SegmentZeroIsValid(t *testing.T) {
	d := newDeps(t)
	reg, err := networkWithSegmentZero()
	require.NoError(t, err)
	d.registry = reg
	svc := newFeedbackService(t, d, nil)

	_, err = svc.Submit(context.Background(), models.FeedbackInput{SegmentID: 0, Rating: 3}, nil)
	assert.NoError(t, err)
}

func TestFeedbackService_List(t *testing.T) {
	d := newDeps(t)
	svc := newFeedbackService(t, d, nil)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 1} {
		_, err := svc.Submit(ctx, models.FeedbackInput{SegmentID: id, Rating: 3}, nil)
		require.NoError(t, err)
	}

	seg := int64(1)
	list, total, err := svc.List(ctx, models.FeedbackFilter{SegmentID: &seg})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

func TestFeedbackService_AcceptsSmallClockSkew(t *testing.T) {
	d := newDeps(t)
	svc := newFeedbackService(t, d, nil)

	ts := time.Date(2026, 3, 2, 21, 34, 0, 0, time.UTC).Unix()
	_, err := svc.Submit(context.Background(), models.FeedbackInput{SegmentID: 1, Rating: 4, Timestamp: ts}, nil)
	require.NoError(t, err)

	top := models.MaxTrustWeight
	_, err = svc.Submit(context.Background(), models.FeedbackInput{SegmentID: 1, Rating: 4, TrustWeight: &top}, nil)
	require.NoError(t, err)
}

func TestFeedbackService_RejectsClaimTrustAboveCap(t *testing.T) {
	d := newDeps(t)
	svc := newFeedbackService(t, d, nil)

	trust := 50.0
	claims := &auth.Claims{TrustWeight: &trust}
	_, err := svc.Submit(context.Background(), models.FeedbackInput{SegmentID: 1, Rating: 5}, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTrustWeight)
}

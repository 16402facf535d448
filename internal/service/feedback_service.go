package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/auth"
	"github.com/safetrace/safetrace-backend-go/internal/feedback"
	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// MaxClockSkew is how far past the server clock a feedback timestamp may be
const MaxClockSkew = 5 * time.Minute

// FeedbackAcknowledger is told when a trip's completed segment was rated
type FeedbackAcknowledger interface {
	Acknowledge(tripID string, segmentID int64) bool
}

// FeedbackService validates and records feedback submissions
type FeedbackService struct {
	store    feedback.Store
	registry *network.Registry
	acks     FeedbackAcknowledger
	validate *validator.Validate
	metrics  *metrics.Collector
	logger   *zap.Logger
	now      func() time.Time
	location *time.Location
}

// NewFeedbackService creates a new feedback service. acks may be nil.
func NewFeedbackService(store feedback.Store, registry *network.Registry, acks FeedbackAcknowledger, m *metrics.Collector, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		store:    store,
		registry: registry,
		acks:     acks,
		validate: validator.New(),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		location: time.Local,
	}
}

// Submit validates an input and appends it as an immutable record. Claims,
// when present, override the persona and trust weight of the input.
func (s *FeedbackService) Submit(ctx context.Context, in models.FeedbackInput, claims *auth.Claims) (*models.FeedbackResult, error) {
	rec, err := s.build(in, claims)
	if err != nil {
		s.metrics.FeedbackSubmitted.WithLabelValues("rejected").Inc()
		return nil, err
	}

	version, err := s.store.Append(ctx, rec)
	if err != nil {
		s.metrics.FeedbackSubmitted.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	s.metrics.FeedbackSubmitted.WithLabelValues("accepted").Inc()

	if in.TripID != "" && s.acks != nil {
		s.acks.Acknowledge(in.TripID, rec.SegmentID)
	}

	s.logger.Debug("Feedback recorded",
		zap.String("id", rec.ID),
		zap.Int64("segment_id", rec.SegmentID),
		zap.Int("rating", rec.Rating),
		zap.Int64("version", version),
	)

	return &models.FeedbackResult{
		ID:        rec.ID,
		SegmentID: rec.SegmentID,
		Version:   version,
		TimeOfDay: rec.TimeOfDay,
	}, nil
}

func (s *FeedbackService) build(in models.FeedbackInput, claims *auth.Claims) (models.FeedbackRecord, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.FeedbackRecord{}, apperrors.ErrInvalidInput.WithCause(err)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return models.FeedbackRecord{}, apperrors.ErrInvalidRating.WithDetail("rating", in.Rating)
	}
	if !s.registry.Current().Index.Contains(in.SegmentID) {
		return models.FeedbackRecord{}, apperrors.ErrUnknownSegment.WithDetail("segment_id", in.SegmentID)
	}

	rec := models.FeedbackRecord{
		ID:          uuid.NewString(),
		SegmentID:   in.SegmentID,
		Rating:      in.Rating,
		Tags:        dedupe(in.Tags),
		Timestamp:   in.Timestamp,
		Persona:     in.Persona,
		TrustWeight: models.DefaultTrustWeight,
	}

	if in.TrustWeight != nil {
		rec.TrustWeight = *in.TrustWeight
	}
	if claims != nil {
		rec.SubmittedBy = claims.Subject
		if claims.Persona != "" {
			rec.Persona = claims.Persona
		}
		if claims.TrustWeight != nil {
			rec.TrustWeight = *claims.TrustWeight
		}
	}
	if rec.Persona == "" {
		rec.Persona = models.DefaultPersona
	}
	if math.IsNaN(rec.TrustWeight) || rec.TrustWeight < 0 || rec.TrustWeight > models.MaxTrustWeight {
		return models.FeedbackRecord{}, apperrors.ErrInvalidTrustWeight.WithDetail("trust_weight", rec.TrustWeight)
	}

	at := s.now()
	if rec.Timestamp == 0 {
		rec.Timestamp = at.Unix()
	} else {
		if rec.Timestamp > at.Add(MaxClockSkew).Unix() {
			return models.FeedbackRecord{}, apperrors.ErrFutureTimestamp.WithDetail("timestamp", rec.Timestamp)
		}
		at = time.Unix(rec.Timestamp, 0)
	}
	rec.TimeOfDay = feedback.TimeOfDay(at.In(s.location))

	return rec, nil
}

// List retrieves feedback with filtering and pagination
func (s *FeedbackService) List(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackRecord, int64, error) {
	return s.store.List(ctx, filter)
}

// Tags form a set; repeats are dropped so a tag cannot count twice
func dedupe(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

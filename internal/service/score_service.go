package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/feedback"
	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
	"github.com/safetrace/safetrace-backend-go/internal/stats"
)

// ScorePublisher stores a computed snapshot for external readers
type ScorePublisher interface {
	Save(ctx context.Context, snap *models.ScoreSnapshot) error
}

// ScoreSummary describes the distribution of published scores
type ScoreSummary struct {
	Version         int64   `json:"version"`
	ComputedAt      int64   `json:"computed_at"`
	SegmentsCovered int     `json:"segments_covered"`
	FeedbackCount   int     `json:"feedback_count"`
	MeanScore       float64 `json:"mean_score"`
	MedianScore     float64 `json:"median_score"`
	P10Score        float64 `json:"p10_score"`
	MinScore        float64 `json:"min_score"`
	MaxScore        float64 `json:"max_score"`
}

// ScoreService keeps the current score snapshot. Every recompute is a full
// batch over an immutable feedback snapshot; readers never block on it.
type ScoreService struct {
	store     feedback.Store
	engine    *scoring.Engine
	publisher ScorePublisher
	metrics   *metrics.Collector
	logger    *zap.Logger
	now       func() time.Time

	current atomic.Pointer[models.ScoreSnapshot]
	mu      sync.Mutex // serialises recomputes
}

// NewScoreService creates a new score service. publisher may be nil.
func NewScoreService(store feedback.Store, engine *scoring.Engine, publisher ScorePublisher, m *metrics.Collector, logger *zap.Logger) *ScoreService {
	return &ScoreService{
		store:     store,
		engine:    engine,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Current returns the latest snapshot, recomputing first when feedback has
// been added since it was built
func (s *ScoreService) Current(ctx context.Context) (*models.ScoreSnapshot, error) {
	version, err := s.store.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback version: %w", err)
	}

	if snap := s.current.Load(); snap != nil && snap.Version == version {
		return snap, nil
	}
	return s.refresh(ctx, false)
}

// Recompute unconditionally rebuilds the snapshot, refreshing recency decay
func (s *ScoreService) Recompute(ctx context.Context) (*models.ScoreSnapshot, error) {
	return s.refresh(ctx, true)
}

func (s *ScoreService) refresh(ctx context.Context, force bool) (*models.ScoreSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot feedback: %w", err)
	}

	// Another caller may have finished the same work while we waited
	if prev := s.current.Load(); !force && prev != nil && prev.Version == fb.Version {
		return prev, nil
	}

	start := time.Now()
	now := s.now().Unix()
	scores := s.engine.Compute(fb.Records, now)

	snap := &models.ScoreSnapshot{
		Version:         fb.Version,
		ComputedAt:      now,
		Scores:          scores,
		SegmentsCovered: len(scores),
	}
	s.current.Store(snap)

	s.metrics.ScoreRecomputes.Inc()
	s.metrics.ScoreDuration.Observe(time.Since(start).Seconds())
	s.metrics.SegmentsScored.Set(float64(len(scores)))

	s.logger.Debug("Scores recomputed",
		zap.Int64("feedback_version", fb.Version),
		zap.Int("records", len(fb.Records)),
		zap.Int("segments", len(scores)),
		zap.Duration("took", time.Since(start)),
	)

	if s.publisher != nil {
		if err := s.publisher.Save(ctx, snap); err != nil {
			// Publishing is best effort; the in-memory snapshot stays authoritative
			s.logger.Error("Failed to publish score snapshot", zap.Error(err))
		}
	}

	return snap, nil
}

// Get returns the score of one segment, neutral when it has no feedback
func (s *ScoreService) Get(ctx context.Context, segmentID int64) (models.SegmentScore, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return models.SegmentScore{}, err
	}
	return scoring.Lookup(snap.Scores, segmentID), nil
}

// List returns scored segments matching the filter, ordered by segment id
func (s *ScoreService) List(ctx context.Context, filter models.ScoreFilter) ([]models.SegmentScore, *models.ScoreSnapshot, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, nil, err
	}

	list := make([]models.SegmentScore, 0, len(snap.Scores))
	for _, sc := range snap.Scores {
		if filter.Matches(sc) {
			list = append(list, sc)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SegmentID < list[j].SegmentID })

	return list, snap, nil
}

// Export returns the snapshot keyed by the string form of each segment id,
// with score and confidence rounded to exportPrecision decimals
func (s *ScoreService) Export(ctx context.Context) (map[string]models.SegmentScore, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.SegmentScore, len(snap.Scores))
	for id, sc := range snap.Scores {
		sc.Score = round(sc.Score, exportPrecision)
		sc.Confidence = round(sc.Confidence, exportPrecision)
		out[fmt.Sprintf("%d", id)] = sc
	}
	return out, nil
}

const exportPrecision = 3

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// Summary describes the current score distribution
func (s *ScoreService) Summary(ctx context.Context) (*ScoreSummary, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(snap.Scores))
	count := 0
	for _, sc := range snap.Scores {
		values = append(values, sc.Score)
		count += sc.NumFeedback
	}

	return &ScoreSummary{
		Version:         snap.Version,
		ComputedAt:      snap.ComputedAt,
		SegmentsCovered: snap.SegmentsCovered,
		FeedbackCount:   count,
		MeanScore:       stats.Mean(values),
		MedianScore:     stats.Median(values),
		P10Score:        stats.Quantile(values, 0.1),
		MinScore:        stats.Min(values),
		MaxScore:        stats.Max(values),
	}, nil
}

// Run recomputes on a fixed interval until ctx is cancelled, so recency
// decay keeps advancing without new feedback
func (s *ScoreService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Recompute(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("Periodic score recompute failed", zap.Error(err))
			}
		}
	}
}

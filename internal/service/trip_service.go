package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	"github.com/safetrace/safetrace-backend-go/internal/trip"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// TripService manages live trip sessions. Each session owns a segmenter
// pinned to the network snapshot that was active when it started.
type TripService struct {
	registry    *network.Registry
	cfg         trip.Config
	ttl         time.Duration
	maxSessions int
	metrics     *metrics.Collector
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*tripSession
}

type tripSession struct {
	mu        sync.Mutex
	trip      models.Trip
	segmenter *trip.Segmenter
	lastSeen  time.Time
}

// NewTripService creates a new trip service
func NewTripService(registry *network.Registry, cfg trip.Config, ttl time.Duration, maxSessions int, m *metrics.Collector, logger *zap.Logger) *TripService {
	return &TripService{
		registry:    registry,
		cfg:         cfg,
		ttl:         ttl,
		maxSessions: maxSessions,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*tripSession),
	}
}

// Start opens a new trip session
func (s *TripService) Start(ctx context.Context) (*models.Trip, error) {
	snap := s.registry.Current()
	now := s.now()

	sess := &tripSession{
		trip: models.Trip{
			ID:             uuid.NewString(),
			State:          models.TripNotStarted,
			StartedAt:      now.Unix(),
			NetworkVersion: snap.Version,
			Events:         []models.SegmentCompleted{},
			Pending:        []models.SegmentCompleted{},
		},
		segmenter: trip.NewSegmenter(snap.Index, s.cfg),
		lastSeen:  now,
	}

	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return nil, apperrors.ErrTooManyTrips.WithDetail("max_sessions", s.maxSessions)
	}
	s.sessions[sess.trip.ID] = sess
	s.mu.Unlock()

	s.metrics.TripsStarted.Inc()
	s.logger.Debug("Trip started", zap.String("trip_id", sess.trip.ID), zap.Int64("network_version", snap.Version))

	t := sess.snapshot()
	return &t, nil
}

// Push feeds a batch of points into a trip and returns the events produced
func (s *TripService) Push(ctx context.Context, id string, points []models.GPSPoint) (*models.PointsResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.segmenter.Done() {
		return nil, apperrors.ErrTripEnded.WithDetail("trip_id", id)
	}

	events := []models.SegmentCompleted{}
	consumed := 0
	var feedErr error
	for _, p := range points {
		if feedErr = ctx.Err(); feedErr != nil {
			break
		}

		var evs []models.SegmentCompleted
		if evs, feedErr = sess.segmenter.Feed(p); feedErr != nil {
			break
		}
		consumed++
		events = append(events, evs...)
		if sess.segmenter.Done() {
			break
		}
	}

	// Events emitted before a failure are kept
	sess.record(events)
	sess.lastSeen = s.now()
	s.metrics.GPSPoints.Add(float64(consumed))
	for _, ev := range events {
		s.metrics.SegmentsCompleted.WithLabelValues(string(ev.Reason)).Inc()
	}
	if feedErr != nil {
		return nil, feedErr
	}

	if sess.segmenter.Done() {
		sess.trip.EndedAt = events[len(events)-1].Timestamp
		s.metrics.TripsEnded.WithLabelValues(string(models.ReasonStillness)).Inc()
	}

	t := sess.snapshot()
	return &models.PointsResult{Events: events, Trip: &t}, nil
}

// Stop ends a trip on user request. The segment being walked is reported as
// completed at timestamp (or now when zero).
func (s *TripService) Stop(ctx context.Context, id string, timestamp int64) (*models.PointsResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.segmenter.Done() {
		return nil, apperrors.ErrTripEnded.WithDetail("trip_id", id)
	}
	if timestamp == 0 {
		timestamp = s.now().Unix()
	}

	events := sess.segmenter.Stop(timestamp)
	if events == nil {
		events = []models.SegmentCompleted{}
	}
	sess.record(events)
	sess.trip.EndedAt = timestamp
	sess.lastSeen = s.now()

	s.metrics.TripsEnded.WithLabelValues(string(models.ReasonCancelled)).Inc()
	for _, ev := range events {
		s.metrics.SegmentsCompleted.WithLabelValues(string(ev.Reason)).Inc()
	}

	t := sess.snapshot()
	return &models.PointsResult{Events: events, Trip: &t}, nil
}

// Get returns the current state of a trip
func (s *TripService) Get(ctx context.Context, id string) (*models.Trip, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	t := sess.snapshot()
	return &t, nil
}

// Acknowledge removes the first pending event for segmentID once feedback
// for it has been recorded
func (s *TripService) Acknowledge(id string, segmentID int64) bool {
	sess, err := s.session(id)
	if err != nil {
		return false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	for i, ev := range sess.trip.Pending {
		if ev.SegmentID == segmentID {
			sess.trip.Pending = append(sess.trip.Pending[:i:i], sess.trip.Pending[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the number of open sessions
func (s *TripService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunCleanup evicts idle sessions every interval until ctx is cancelled
func (s *TripService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(s.now()); n > 0 {
				s.logger.Info("Evicted idle trips", zap.Int("count", n))
			}
		}
	}
}

func (s *TripService) evictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen) > s.ttl
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (s *TripService) session(id string) (*tripSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrSessionNotFound.WithDetail("trip_id", id)
	}
	return sess, nil
}

func (sess *tripSession) record(events []models.SegmentCompleted) {
	sess.trip.Events = append(sess.trip.Events, events...)
	sess.trip.Pending = append(sess.trip.Pending, events...)
	sess.trip.State = sess.segmenter.State()
	sess.trip.Points = sess.segmenter.Points()
	sess.trip.DistanceMeters = sess.segmenter.DistanceMeters()
}

// snapshot copies the trip so callers never share slices with the session
func (sess *tripSession) snapshot() models.Trip {
	t := sess.trip
	t.Events = append([]models.SegmentCompleted{}, sess.trip.Events...)
	t.Pending = append([]models.SegmentCompleted{}, sess.trip.Pending...)
	return t
}

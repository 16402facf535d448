package service

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// routeKey identifies a route result. Any change of network or scores
// produces a new key, so cached entries never go stale.
type routeKey struct {
	start, end     int64
	networkVersion int64
	scoreVersion   int64
	scoredAt       int64
}

// RouteService answers routing queries against the active network and scores
type RouteService struct {
	registry *network.Registry
	scores   *ScoreService
	cache    *lru.Cache[routeKey, *models.RouteResult]
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewRouteService creates a route service. A cacheSize of 0 disables caching.
func NewRouteService(registry *network.Registry, scores *ScoreService, cacheSize int, m *metrics.Collector, logger *zap.Logger) (*RouteService, error) {
	s := &RouteService{
		registry: registry,
		scores:   scores,
		metrics:  m,
		logger:   logger,
	}

	if cacheSize > 0 {
		cache, err := lru.New[routeKey, *models.RouteResult](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create route cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Route computes the fastest and safest routes for a query. Results are
// shared between callers and must not be modified.
func (s *RouteService) Route(ctx context.Context, q models.RouteQuery) (*models.RouteResult, error) {
	start := time.Now()
	res, err := s.route(ctx, q)
	s.metrics.RouteDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		s.metrics.RouteRequests.WithLabelValues("ok").Inc()
	case apperrors.IsNoPath(err):
		s.metrics.RouteRequests.WithLabelValues("no_path").Inc()
	default:
		s.metrics.RouteRequests.WithLabelValues("error").Inc()
	}
	return res, err
}

func (s *RouteService) route(ctx context.Context, q models.RouteQuery) (*models.RouteResult, error) {
	snap := s.registry.Current()

	scores, err := s.scores.Current(ctx)
	if err != nil {
		return nil, err
	}

	from, err := snap.Graph.NearestNode(q.StartLat, q.StartLng)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start node: %w", err)
	}
	to, err := snap.Graph.NearestNode(q.EndLat, q.EndLng)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve end node: %w", err)
	}

	key := routeKey{
		start:          from,
		end:            to,
		networkVersion: snap.Version,
		scoreVersion:   scores.Version,
		scoredAt:       scores.ComputedAt,
	}
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			s.metrics.CacheHits.Inc()
			return res, nil
		}
		s.metrics.CacheMisses.Inc()
	}

	res, err := snap.Router.RouteBetween(from, to, scores.Scores)
	if err != nil {
		return nil, err
	}
	res.ScoreVersion = scores.Version

	if s.cache != nil {
		s.cache.Add(key, res)
	}
	return res, nil
}

// Purge drops every cached route
func (s *RouteService) Purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

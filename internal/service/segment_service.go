package service

import (
	"context"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// SegmentService handles lookups of street segments
type SegmentService struct {
	registry *network.Registry
	scores   *ScoreService
}

// NewSegmentService creates a new segment service
func NewSegmentService(registry *network.Registry, scores *ScoreService) *SegmentService {
	return &SegmentService{registry: registry, scores: scores}
}

// GetByID returns a segment with its current score
func (s *SegmentService) GetByID(ctx context.Context, id int64) (*models.SegmentSummary, error) {
	seg, ok := s.registry.Current().Segment(id)
	if !ok {
		return nil, apperrors.ErrSegmentNotFound.WithDetail("segment_id", id)
	}
	return s.summarize(ctx, seg)
}

// Nearest returns the segment a GPS point would be matched to
func (s *SegmentService) Nearest(ctx context.Context, lat, lng float64) (*models.SegmentSummary, error) {
	snap := s.registry.Current()

	id, err := snap.Index.Nearest(lat, lng)
	if err != nil {
		return nil, err
	}
	seg, ok := snap.Segment(id)
	if !ok {
		return nil, apperrors.ErrSegmentNotFound.WithDetail("segment_id", id)
	}
	return s.summarize(ctx, seg)
}

// NetworkInfo describes the active street network
type NetworkInfo struct {
	Version    int64  `json:"version"`
	LoadedAt   int64  `json:"loaded_at"`
	Source     string `json:"source"`
	Segments   int    `json:"segments"`
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	NodeDrifts int    `json:"node_drifts"`
}

// Info returns statistics of the active network
func (s *SegmentService) Info() NetworkInfo {
	snap := s.registry.Current()
	return NetworkInfo{
		Version:    snap.Version,
		LoadedAt:   snap.LoadedAt.Unix(),
		Source:     snap.Source,
		Segments:   len(snap.Segments),
		Nodes:      snap.Graph.NodeCount(),
		Edges:      snap.Graph.EdgeCount(),
		NodeDrifts: len(snap.Graph.Drifts()),
	}
}

func (s *SegmentService) summarize(ctx context.Context, seg models.Segment) (*models.SegmentSummary, error) {
	snap, err := s.scores.Current(ctx)
	if err != nil {
		return nil, err
	}
	score := scoring.Lookup(snap.Scores, seg.SegmentID)
	return &models.SegmentSummary{Segment: seg, Score: &score}, nil
}

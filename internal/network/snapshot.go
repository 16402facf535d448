package network

import (
	"fmt"
	"time"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/routing"
	"github.com/safetrace/safetrace-backend-go/internal/segment"
)

// Snapshot is an immutable view of the static street network. All derived
// structures are built from the same segment set.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Source   string

	Segments []models.Segment
	Index    *segment.Index
	Graph    *routing.Graph
	Router   *routing.Router

	byID map[int64]int
}

// Build derives the index and graph of a validated segment set
func Build(segments []models.Segment, version int64, source string) (*Snapshot, error) {
	if err := segment.Validate(segments); err != nil {
		return nil, err
	}

	idx, err := segment.NewIndex(segments)
	if err != nil {
		return nil, fmt.Errorf("failed to build segment index: %w", err)
	}

	graph, err := routing.NewGraph(segments)
	if err != nil {
		return nil, fmt.Errorf("failed to build route graph: %w", err)
	}

	byID := make(map[int64]int, len(segments))
	for i, s := range segments {
		byID[s.SegmentID] = i
	}

	return &Snapshot{
		Version:  version,
		LoadedAt: time.Now(),
		Source:   source,
		Segments: segments,
		Index:    idx,
		Graph:    graph,
		Router:   routing.NewRouter(graph),
		byID:     byID,
	}, nil
}

// Segment returns a segment by id
func (s *Snapshot) Segment(id int64) (models.Segment, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Segment{}, false
	}
	return s.Segments[i], true
}

package feedback

import (
	"context"
	"sync"

	"github.com/safetrace/safetrace-backend-go/internal/models"
)

// Store is an append-only, versioned feedback collection. Every successful
// Append increments the version by one.
type Store interface {
	Append(ctx context.Context, rec models.FeedbackRecord) (int64, error)
	Snapshot(ctx context.Context) (models.FeedbackSnapshot, error)
	Version(ctx context.Context) (int64, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackRecord, int64, error)
}

// MemoryStore keeps feedback in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.FeedbackRecord
	bySeg   map[int64]int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bySeg: make(map[int64]int)}
}

// Append adds a record and returns the new version
func (s *MemoryStore) Append(ctx context.Context, rec models.FeedbackRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rec.Tags = append([]string(nil), rec.Tags...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.bySeg[rec.SegmentID]++
	return int64(len(s.records)), nil
}

// Snapshot returns a copy of all records with the version they represent
func (s *MemoryStore) Snapshot(ctx context.Context) (models.FeedbackSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.FeedbackSnapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.FeedbackRecord, len(s.records))
	copy(records, s.records)
	return models.FeedbackSnapshot{Version: int64(len(records)), Records: records}, nil
}

// Version returns the number of records appended so far
func (s *MemoryStore) Version(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// CountBySegment returns how many records a segment has received
func (s *MemoryStore) CountBySegment(segmentID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bySeg[segmentID]
}

// List returns matching records newest first, paginated
func (s *MemoryStore) List(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackRecord, int64, error) {
	filter.Normalize()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}

	var matched []models.FeedbackRecord
	for i := len(snap.Records) - 1; i >= 0; i-- {
		if filter.Matches(snap.Records[i]) {
			matched = append(matched, snap.Records[i])
		}
	}

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(matched) {
		return []models.FeedbackRecord{}, total, nil
	}
	end := min(offset+filter.PageSize, len(matched))
	return matched[offset:end], total, nil
}

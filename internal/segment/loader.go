package segment

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// LoadFile reads and validates a segment data file
func LoadFile(path string) ([]models.Segment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment file: %w", err)
	}
	defer file.Close()

	segments, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return segments, nil
}

// Decode parses an ordered JSON array of segment records and validates it
func Decode(r io.Reader) ([]models.Segment, error) {
	var segments []models.Segment
	if err := json.NewDecoder(r).Decode(&segments); err != nil {
		return nil, apperrors.ErrMalformedSegment.WithCause(err)
	}

	if err := Validate(segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// Validate checks the structural invariants of a segment set. Any violation
// is a data-integrity failure; no partial set is ever accepted.
func Validate(segments []models.Segment) error {
	if len(segments) == 0 {
		return apperrors.ErrEmptySegmentSet
	}

	seen := make(map[int64]int, len(segments))
	for i, s := range segments {
		if prev, ok := seen[s.SegmentID]; ok {
			return apperrors.ErrDuplicateSegment.
				WithMessage("segment id %d appears at positions %d and %d", s.SegmentID, prev, i).
				WithDetail("segment_id", s.SegmentID)
		}
		seen[s.SegmentID] = i

		if !(s.Length > 0) || math.IsInf(s.Length, 0) {
			return malformed(s, "length must be a positive number of meters")
		}
		if len(s.Coordinates) < 2 {
			return malformed(s, "polyline needs at least 2 coordinates")
		}
		for _, c := range s.Coordinates {
			if math.IsNaN(c[0]) || math.IsNaN(c[1]) || c[0] < -180 || c[0] > 180 || c[1] < -90 || c[1] > 90 {
				return malformed(s, "coordinate out of range")
			}
		}
	}

	return nil
}

func malformed(s models.Segment, reason string) error {
	return apperrors.ErrMalformedSegment.
		WithMessage("segment %d: %s", s.SegmentID, reason).
		WithDetail("segment_id", s.SegmentID)
}

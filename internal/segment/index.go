package segment

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/spatial"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// Index maps GPS points to the nearest known street segment. It is read-only
// after construction and safe for concurrent use.
type Index struct {
	ids   []int64
	lines []orb.LineString
	byID  map[int64]int
}

// NewIndex builds an index over segments, preserving their input order
func NewIndex(segments []models.Segment) (*Index, error) {
	if len(segments) == 0 {
		return nil, apperrors.ErrEmptySegmentSet
	}

	idx := &Index{
		ids:   make([]int64, len(segments)),
		lines: make([]orb.LineString, len(segments)),
		byID:  make(map[int64]int, len(segments)),
	}
	for i, s := range segments {
		idx.ids[i] = s.SegmentID
		idx.lines[i] = spatial.LineString(s.Coordinates)
		idx.byID[s.SegmentID] = i
	}

	return idx, nil
}

// Len returns the number of indexed segments
func (idx *Index) Len() int {
	return len(idx.ids)
}

// Contains reports whether a segment id is indexed
func (idx *Index) Contains(segmentID int64) bool {
	_, ok := idx.byID[segmentID]
	return ok
}

// Nearest returns the id of the segment whose polyline is closest to the
// point in planar lng/lat space. Ties resolve to the earliest segment.
func (idx *Index) Nearest(lat, lng float64) (int64, error) {
	if idx == nil || len(idx.ids) == 0 {
		return 0, apperrors.ErrEmptySegmentSet
	}

	p := spatial.Point(lng, lat)
	best := -1
	bestDist := math.Inf(1)

	// Linear scan; strict comparison keeps the first minimum
	for i, line := range idx.lines {
		d := spatial.PlanarDistanceToLine(p, line)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}

	if best < 0 {
		// Only reachable when every distance is NaN
		return 0, apperrors.ErrPointUnmatchable.WithMessage("point (%f, %f) cannot be matched to any segment", lat, lng)
	}
	return idx.ids[best], nil
}

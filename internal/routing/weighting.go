package routing

import (
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
)

// WeightFunc assigns a non-negative traversal cost to an edge
type WeightFunc func(e Edge) float64

// Fastest weights an edge by its length alone
func Fastest(e Edge) float64 {
	return e.Length
}

// Safest weights an edge by length × (2 − score). Segments without a score
// use the neutral default, so unrated streets cost 1.5× their length.
func Safest(scores map[int64]models.SegmentScore) WeightFunc {
	return func(e Edge) float64 {
		return e.Length * (2 - scoring.Lookup(scores, e.SegmentID).Score)
	}
}

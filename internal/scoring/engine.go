package scoring

import (
	"math"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/stats"
)

const (
	secondsPerDay = 86400

	// NeutralScore is used for segments without usable feedback
	NeutralScore = 0.5

	// DefaultDecayPerDay is the recency decay rate
	DefaultDecayPerDay = 0.08

	// confidenceScale is the feedback count at which confidence reaches 1-1/e
	confidenceScale = 4.0
)

// maxConfidence keeps confidence strictly below 1 once exp underflows
var maxConfidence = math.Nextafter(1, 0)

// Engine aggregates feedback into per-segment safety scores. It holds only
// configuration and is safe for concurrent use.
type Engine struct {
	tags     map[string]float64
	personas []PersonaRule
	decay    float64
}

// Option customises an Engine
type Option func(*Engine)

// WithTagModifiers replaces the tag adjustment table
func WithTagModifiers(tags map[string]float64) Option {
	return func(e *Engine) {
		e.tags = make(map[string]float64, len(tags))
		for k, v := range tags {
			e.tags[k] = v
		}
	}
}

// WithPersonaRules replaces the persona rules
func WithPersonaRules(rules []PersonaRule) Option {
	return func(e *Engine) {
		e.personas = append([]PersonaRule(nil), rules...)
	}
}

// WithDecay sets the per-day recency decay rate
func WithDecay(perDay float64) Option {
	return func(e *Engine) {
		e.decay = perDay
	}
}

// NewEngine creates an engine with the default tables
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tags:     DefaultTagModifiers(),
		personas: DefaultPersonaRules(),
		decay:    DefaultDecayPerDay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Adjusted returns the clamped, tag- and persona-adjusted rating of a record
func (e *Engine) Adjusted(rec models.FeedbackRecord) float64 {
	v := float64(rec.Rating) / 5

	for _, tag := range rec.Tags {
		v += e.tags[tag]
	}
	for _, rule := range e.personas {
		if rule.Applies(rec) {
			v += rule.Adjustment
		}
	}

	return stats.Clamp(v, 0, 1)
}

// Weight returns the recency-decayed trust weight of a record at now. Records
// dated after now count as fresh, and trust is bounded to [0, MaxTrustWeight],
// so the weight never exceeds MaxTrustWeight.
func (e *Engine) Weight(rec models.FeedbackRecord, now int64) float64 {
	ageDays := math.Max(0, float64(now-rec.Timestamp)/secondsPerDay)

	trust := rec.TrustWeight
	if math.IsNaN(trust) {
		trust = 0
	}
	trust = stats.Clamp(trust, 0, models.MaxTrustWeight)

	return math.Exp(-e.decay*ageDays) * trust
}

// Compute scores every segment that has feedback. The input is never
// modified; each call is a full recomputation.
func (e *Engine) Compute(feedback []models.FeedbackRecord, now int64) map[int64]models.SegmentScore {
	type group struct {
		values  []float64
		weights []float64
	}

	groups := make(map[int64]*group)
	for _, rec := range feedback {
		g, ok := groups[rec.SegmentID]
		if !ok {
			g = &group{}
			groups[rec.SegmentID] = g
		}
		g.values = append(g.values, e.Adjusted(rec))
		g.weights = append(g.weights, e.Weight(rec, now))
	}

	scores := make(map[int64]models.SegmentScore, len(groups))
	for id, g := range groups {
		score, ok := stats.WeightedMean(g.values, g.weights)
		if !ok {
			score = NeutralScore
		}

		scores[id] = models.SegmentScore{
			SegmentID:   id,
			Score:       stats.Clamp(score, 0, 1),
			Confidence:  Confidence(len(g.values)),
			NumFeedback: len(g.values),
		}
	}

	return scores
}

// Confidence returns the saturating reliability of n feedback records
func Confidence(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Min(1-math.Exp(-float64(n)/confidenceScale), maxConfidence)
}

// Lookup returns the score of a segment, or the neutral default when the
// segment has no feedback
func Lookup(scores map[int64]models.SegmentScore, segmentID int64) models.SegmentScore {
	if s, ok := scores[segmentID]; ok {
		return s
	}
	return models.SegmentScore{SegmentID: segmentID, Score: NeutralScore}
}

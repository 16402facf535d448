package models

// SegmentScore is the aggregated safety score of a segment
type SegmentScore struct {
	SegmentID   int64   `json:"segment_id"`
	Score       float64 `json:"score"`      // 0~1, higher is safer
	Confidence  float64 `json:"confidence"` // 0~1 (exclusive), saturates with feedback count
	NumFeedback int     `json:"num_feedback"`
}

// ScoreSnapshot is a full-batch scoring result over one feedback version
type ScoreSnapshot struct {
	Version         int64                  `json:"version"`     // Feedback version the scores were computed from
	ComputedAt      int64                  `json:"computed_at"` // Unix timestamp used as "now" for recency decay
	Scores          map[int64]SegmentScore `json:"-"`
	SegmentsCovered int                    `json:"segments_covered"` // Number of segments with feedback
}

// Lookup returns the score of a segment, or nil when it has no feedback
func (s *ScoreSnapshot) Lookup(segmentID int64) *SegmentScore {
	if s == nil {
		return nil
	}
	score, ok := s.Scores[segmentID]
	if !ok {
		return nil
	}
	return &score
}

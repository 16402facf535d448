package models

// FeedbackFilter represents filter parameters for querying feedback
type FeedbackFilter struct {
	SegmentID *int64 `form:"segmentId"` // nil matches every segment
	Persona   string `form:"persona"`
	StartTime int64  `form:"startTime"` // Unix timestamp
	EndTime   int64  `form:"endTime"`   // Unix timestamp
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// Normalize applies the default pagination bounds
func (f *FeedbackFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 100
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
}

// Matches reports whether a record passes the filter
func (f FeedbackFilter) Matches(r FeedbackRecord) bool {
	if f.SegmentID != nil && r.SegmentID != *f.SegmentID {
		return false
	}
	if f.Persona != "" && r.Persona != f.Persona {
		return false
	}
	if f.StartTime > 0 && r.Timestamp < f.StartTime {
		return false
	}
	if f.EndTime > 0 && r.Timestamp > f.EndTime {
		return false
	}
	return true
}

// ScoreFilter represents filter parameters for listing scores
type ScoreFilter struct {
	MinScore      float64 `form:"minScore"`      // 0-1
	MaxScore      float64 `form:"maxScore"`      // 0-1, 0 means no upper bound
	MinConfidence float64 `form:"minConfidence"` // 0-1
}

// Matches reports whether a score passes the filter
func (f ScoreFilter) Matches(s SegmentScore) bool {
	if s.Score < f.MinScore || s.Confidence < f.MinConfidence {
		return false
	}
	if f.MaxScore > 0 && s.Score > f.MaxScore {
		return false
	}
	return true
}

package models

// Default feedback attributes
const (
	DefaultPersona     = "walker"
	DefaultTrustWeight = 1.0

	// MaxTrustWeight bounds the weight of a single record so weighted sums stay finite
	MaxTrustWeight = 10.0
)

// FeedbackRecord is a single user rating of a segment. Records are never
// mutated once created.
type FeedbackRecord struct {
	ID          string   `json:"id"`
	SegmentID   int64    `json:"segment_id"`
	Rating      int      `json:"rating"` // 1-5
	Tags        []string `json:"tags"`
	Timestamp   int64    `json:"timestamp"`   // Unix timestamp in seconds
	TimeOfDay   string   `json:"time_of_day"` // morning, afternoon, evening, night
	Persona     string   `json:"persona"`
	TrustWeight float64  `json:"trust_weight"`
	SubmittedBy string   `json:"submitted_by,omitempty"`
}

// HasTag reports whether the record carries tag
func (r FeedbackRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FeedbackInput is the submission payload for a completed segment
type FeedbackInput struct {
	SegmentID   int64    `json:"segment_id"`
	Rating      int      `json:"rating"`
	Tags        []string `json:"tags" validate:"omitempty,max=16,dive,min=1,max=32"`
	Timestamp   int64    `json:"timestamp" validate:"gte=0"` // Defaults to submission time
	Persona     string   `json:"persona" validate:"omitempty,max=32"`
	TrustWeight *float64 `json:"trust_weight,omitempty"`
	TripID      string   `json:"trip_id,omitempty" validate:"omitempty,uuid"`
}

// FeedbackResult is returned after a submission is accepted
type FeedbackResult struct {
	ID        string `json:"id"`
	SegmentID int64  `json:"segment_id"`
	Version   int64  `json:"version"` // Feedback collection version after the append
	TimeOfDay string `json:"time_of_day"`
}

// FeedbackSnapshot is an immutable view of the feedback collection
type FeedbackSnapshot struct {
	Version int64            `json:"version"`
	Records []FeedbackRecord `json:"records"`
}

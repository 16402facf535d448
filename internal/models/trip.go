package models

// TripState is the state of a trip segmenter
type TripState string

// TripState constants
const (
	TripNotStarted TripState = "NOT_STARTED"
	TripTracking   TripState = "TRACKING"
	TripEnded      TripState = "ENDED"
)

// CompletionReason explains why a segment was reported as completed
type CompletionReason string

// CompletionReason constants
const (
	ReasonTransition CompletionReason = "transition" // walker entered another segment
	ReasonStillness  CompletionReason = "stillness"  // walker stopped moving, trip ended
	ReasonCancelled  CompletionReason = "cancelled"  // trip stopped by the user
)

// SegmentCompleted is emitted when the walker leaves a segment
type SegmentCompleted struct {
	SegmentID int64            `json:"segment_id"`
	Timestamp int64            `json:"timestamp"` // Unix timestamp when the next segment was first observed
	Reason    CompletionReason `json:"reason"`
}

// Trip represents a live trip session
type Trip struct {
	ID             string             `json:"id"`
	State          TripState          `json:"state"`
	StartedAt      int64              `json:"started_at"`         // Unix timestamp of session creation
	EndedAt        int64              `json:"ended_at,omitempty"` // Timestamp of the final event or stop request
	NetworkVersion int64              `json:"network_version"`    // Street network the trip is matched against
	Points         int                `json:"points"`             // Number of GPS points consumed
	DistanceMeters float64            `json:"distance_meters"`    // Haversine distance walked while tracking
	Events         []SegmentCompleted `json:"events"`             // Every completion event, in order
	Pending        []SegmentCompleted `json:"pending"`            // Completed segments awaiting feedback
}

// PointsResult is returned after a batch of points is consumed
type PointsResult struct {
	Events []SegmentCompleted `json:"events"` // Events produced by this batch
	Trip   *Trip              `json:"trip"`
}

// StopRequest ends a trip at an optional timestamp
type StopRequest struct {
	Timestamp int64 `json:"timestamp"` // Defaults to the time of the request
}

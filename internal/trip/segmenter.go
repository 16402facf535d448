package trip

import (
	"fmt"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/spatial"
)

// Matcher resolves a GPS point to the nearest street segment
type Matcher interface {
	Nearest(lat, lng float64) (int64, error)
}

// Config holds the speed thresholds of trip detection
type Config struct {
	StartSpeed      float64 // m/s; a trip starts above this speed
	StillSpeed      float64 // m/s; samples below this speed count as still
	MaxStillSamples int     // trip ends once the still counter exceeds this
}

// DefaultConfig returns the walking thresholds
func DefaultConfig() Config {
	return Config{
		StartSpeed:      0.8,
		StillSpeed:      0.5,
		MaxStillSamples: 2,
	}
}

// Segmenter converts an ordered GPS stream into segment-completion events.
// One instance consumes exactly one stream; it is not safe for concurrent use
// and cannot be restarted once ended.
type Segmenter struct {
	matcher Matcher
	cfg     Config

	state        models.TripState
	prevPoint    *models.GPSPoint
	prevSegment  int64
	hasSegment   bool
	stillCounter int

	points   int
	distance float64
}

// NewSegmenter creates a segmenter in the NotStarted state
func NewSegmenter(matcher Matcher, cfg Config) *Segmenter {
	return &Segmenter{
		matcher: matcher,
		cfg:     cfg,
		state:   models.TripNotStarted,
	}
}

// State returns the current state
func (s *Segmenter) State() models.TripState {
	return s.state
}

// Done reports whether the segmenter has reached its terminal state
func (s *Segmenter) Done() bool {
	return s.state == models.TripEnded
}

// Points returns the number of GPS points consumed
func (s *Segmenter) Points() int {
	return s.points
}

// DistanceMeters returns the raw haversine distance walked while tracking
func (s *Segmenter) DistanceMeters() float64 {
	return s.distance
}

// Feed consumes one GPS point and returns the events it produced. A single
// point can yield a transition event followed by the final stillness event.
// Points fed after the trip ended are ignored.
func (s *Segmenter) Feed(point models.GPSPoint) ([]models.SegmentCompleted, error) {
	if s.state == models.TripEnded {
		return nil, nil
	}
	s.points++

	speed := 0.0
	if s.prevPoint != nil {
		speed = spatial.Speed(s.prevPoint.Lat, s.prevPoint.Lng, s.prevPoint.Timestamp,
			point.Lat, point.Lng, point.Timestamp)
	}

	if s.state == models.TripNotStarted {
		if speed > s.cfg.StartSpeed {
			s.state = models.TripTracking
		} else {
			s.advance(point)
			return nil, nil
		}
	} else {
		s.distance += spatial.HaversineDistance(s.prevPoint.Lat, s.prevPoint.Lng, point.Lat, point.Lng)
	}

	current, err := s.matcher.Nearest(point.Lat, point.Lng)
	if err != nil {
		return nil, fmt.Errorf("failed to match point at %d: %w", point.Timestamp, err)
	}

	if !s.hasSegment {
		s.prevSegment = current
		s.hasSegment = true
		s.advance(point)
		return nil, nil
	}

	var events []models.SegmentCompleted

	// Report the segment just exited, then advance
	if current != s.prevSegment {
		events = append(events, models.SegmentCompleted{
			SegmentID: s.prevSegment,
			Timestamp: point.Timestamp,
			Reason:    models.ReasonTransition,
		})
	}
	s.prevSegment = current

	if speed < s.cfg.StillSpeed {
		s.stillCounter++
		if s.stillCounter > s.cfg.MaxStillSamples {
			events = append(events, models.SegmentCompleted{
				SegmentID: s.prevSegment,
				Timestamp: point.Timestamp,
				Reason:    models.ReasonStillness,
			})
			s.state = models.TripEnded
			return events, nil
		}
	} else {
		s.stillCounter = 0
	}

	s.advance(point)
	return events, nil
}

// Stop ends the trip on user request. When a segment is being tracked it is
// reported as completed at the given timestamp.
func (s *Segmenter) Stop(timestamp int64) []models.SegmentCompleted {
	if s.state == models.TripEnded {
		return nil
	}

	wasTracking := s.state == models.TripTracking && s.hasSegment
	s.state = models.TripEnded
	if !wasTracking {
		return nil
	}

	return []models.SegmentCompleted{{
		SegmentID: s.prevSegment,
		Timestamp: timestamp,
		Reason:    models.ReasonCancelled,
	}}
}

func (s *Segmenter) advance(point models.GPSPoint) {
	p := point
	s.prevPoint = &p
}

package trip

import (
	"context"
	"iter"

	"github.com/safetrace/safetrace-backend-go/internal/models"
)

// Events runs a segmenter over a finite sequence of points and yields every
// completion event in order. Iteration stops after the trip ends or on the
// first matching error.
func (s *Segmenter) Events(points iter.Seq[models.GPSPoint]) iter.Seq2[models.SegmentCompleted, error] {
	return func(yield func(models.SegmentCompleted, error) bool) {
		for p := range points {
			events, err := s.Feed(p)
			if err != nil {
				yield(models.SegmentCompleted{}, err)
				return
			}
			for _, ev := range events {
				if !yield(ev, nil) {
					return
				}
			}
			if s.Done() {
				return
			}
		}
	}
}

// Stream consumes points from a channel until it closes, the trip ends or ctx
// is cancelled. The returned channel is closed when the segmenter stops; a
// matching error also stops the stream and is reported through errc.
func (s *Segmenter) Stream(ctx context.Context, points <-chan models.GPSPoint) (<-chan models.SegmentCompleted, <-chan error) {
	out := make(chan models.SegmentCompleted)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-points:
				if !ok {
					return
				}
				events, err := s.Feed(p)
				if err != nil {
					errc <- err
					return
				}
				for _, ev := range events {
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
				if s.Done() {
					return
				}
			}
		}
	}()

	return out, errc
}

// Segment runs a fresh segmenter over a complete trace and collects its events
func Segment(matcher Matcher, cfg Config, points []models.GPSPoint) ([]models.SegmentCompleted, error) {
	s := NewSegmenter(matcher, cfg)
	var events []models.SegmentCompleted
	for _, p := range points {
		evs, err := s.Feed(p)
		if err != nil {
			return events, err
		}
		events = append(events, evs...)
		if s.Done() {
			break
		}
	}
	return events, nil
}

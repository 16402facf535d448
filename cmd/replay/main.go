package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/feedback"
	"github.com/safetrace/safetrace-backend-go/internal/logger"
	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
	"github.com/safetrace/safetrace-backend-go/internal/service"
	"github.com/safetrace/safetrace-backend-go/internal/trip"
)

// Rating is one scripted answer, applied to completed segments in order
type Rating struct {
	Rating  int      `json:"rating"`
	Tags    []string `json:"tags"`
	Persona string   `json:"persona"`
}

// Options configures a replay run
type Options struct {
	SegmentsPath string
	GPSPath      string
	RatingsPath  string
	From, To     string // "lat,lng"; both set to plan a route afterwards
	Trip         trip.Config
}

// Output is the JSON document printed after a replay
type Output struct {
	Events  []models.SegmentCompleted      `json:"events"`
	Skipped int                            `json:"skipped"` // Events without a scripted rating
	Scores  map[string]models.SegmentScore `json:"scores"`
	Route   *models.RouteResult            `json:"route,omitempty"`
}

func main() {
	opts := Options{Trip: trip.DefaultConfig()}
	flag.StringVar(&opts.SegmentsPath, "segments", "./data/segments.json", "Segment data file")
	flag.StringVar(&opts.GPSPath, "gps", "", "JSON array of GPS points")
	flag.StringVar(&opts.RatingsPath, "ratings", "", "JSON array of scripted ratings")
	flag.StringVar(&opts.From, "from", "", "Route start as lat,lng")
	flag.StringVar(&opts.To, "to", "", "Route end as lat,lng")
	flag.Float64Var(&opts.Trip.StartSpeed, "start-speed", opts.Trip.StartSpeed, "Speed in m/s that starts a trip")
	flag.Float64Var(&opts.Trip.StillSpeed, "still-speed", opts.Trip.StillSpeed, "Speed in m/s below which a sample is still")
	flag.IntVar(&opts.Trip.MaxStillSamples, "max-still", opts.Trip.MaxStillSamples, "Still samples tolerated before the trip ends")
	flag.Parse()

	if opts.GPSPath == "" {
		log.Fatal("-gps is required")
	}

	zl, err := logger.New(logger.Config{Level: "warn"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := replay(context.Background(), opts, zl, os.Stdout); err != nil {
		log.Fatalf("Replay failed: %v", err)
	}
}

func replay(ctx context.Context, opts Options, zl *zap.Logger, out io.Writer) error {
	registry, err := network.Load(opts.SegmentsPath, zl)
	if err != nil {
		return err
	}

	var points []models.GPSPoint
	if err := readJSON(opts.GPSPath, &points); err != nil {
		return err
	}
	var ratings []Rating
	if opts.RatingsPath != "" {
		if err := readJSON(opts.RatingsPath, &ratings); err != nil {
			return err
		}
	}

	m := metrics.NewCollector("replay")
	store := feedback.NewMemoryStore()
	feedbackSvc := service.NewFeedbackService(store, registry, nil, m, zl)
	scores := service.NewScoreService(store, scoring.NewEngine(), nil, m, zl)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The producer stops early when the trip ends before the trace does
	feed := make(chan models.GPSPoint)
	go func() {
		defer close(feed)
		for _, p := range points {
			select {
			case feed <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	segmenter := trip.NewSegmenter(registry.Current().Index, opts.Trip)
	events, errc := segmenter.Stream(ctx, feed)

	result := Output{Events: []models.SegmentCompleted{}}
	for ev := range events {
		result.Events = append(result.Events, ev)

		i := len(result.Events) - 1
		if i >= len(ratings) {
			result.Skipped++
			continue
		}
		r := ratings[i]
		if _, err := feedbackSvc.Submit(ctx, models.FeedbackInput{
			SegmentID: ev.SegmentID,
			Rating:    r.Rating,
			Tags:      r.Tags,
			Persona:   r.Persona,
			Timestamp: ev.Timestamp,
		}, nil); err != nil {
			return fmt.Errorf("failed to rate segment %d: %w", ev.SegmentID, err)
		}
	}
	if err := <-errc; err != nil {
		return err
	}

	if result.Scores, err = scores.Export(ctx); err != nil {
		return err
	}

	if opts.From != "" && opts.To != "" {
		q, err := routeQuery(opts.From, opts.To)
		if err != nil {
			return err
		}
		routes, err := service.NewRouteService(registry, scores, 0, m, zl)
		if err != nil {
			return err
		}
		if result.Route, err = routes.Route(ctx, q); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func routeQuery(from, to string) (models.RouteQuery, error) {
	startLat, startLng, err := parseLatLng(from)
	if err != nil {
		return models.RouteQuery{}, err
	}
	endLat, endLng, err := parseLatLng(to)
	if err != nil {
		return models.RouteQuery{}, err
	}
	return models.RouteQuery{StartLat: startLat, StartLng: startLng, EndLat: endLat, EndLng: endLng}, nil
}

func parseLatLng(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinate %q, want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	return lat, lng, nil
}

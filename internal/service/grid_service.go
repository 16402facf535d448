package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	"github.com/safetrace/safetrace-backend-go/internal/stats"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// DefaultGridLevel gives cells of roughly 600 m at the equator
const DefaultGridLevel = 16

// GridService aggregates segment scores into grid cells for heatmaps
type GridService struct {
	registry *network.Registry
	scores   *ScoreService
}

// NewGridService creates a new grid service
func NewGridService(registry *network.Registry, scores *ScoreService) *GridService {
	return &GridService{registry: registry, scores: scores}
}

type cellAcc struct {
	cell    models.GridCell
	values  []float64
	lengths []float64
}

// GetGridCells returns the cells containing at least one scored segment,
// least safe first
func (s *GridService) GetGridCells(ctx context.Context, filter models.GridFilter) ([]models.GridCell, *models.ScoreSnapshot, error) {
	if filter.Level == 0 {
		filter.Level = DefaultGridLevel
	}

	snap, err := s.scores.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	net := s.registry.Current()

	var bound orb.Bound
	if filter.HasBounds() {
		bound = orb.Bound{
			Min: orb.Point{filter.MinLon, filter.MinLat},
			Max: orb.Point{filter.MaxLon, filter.MaxLat},
		}
	}

	size := cellSize(filter.Level)
	acc := make(map[string]*cellAcc)
	for _, seg := range net.Segments {
		score, ok := snap.Scores[seg.SegmentID]
		if !ok {
			continue
		}

		mid := midpoint(seg)
		if filter.HasBounds() && !bound.Contains(mid) {
			continue
		}

		x := int(math.Floor((mid.Lon() + 180) / size))
		y := int(math.Floor((mid.Lat() + 90) / size))
		id := fmt.Sprintf("L%d_%d_%d", filter.Level, x, y)

		a, ok := acc[id]
		if !ok {
			a = &cellAcc{cell: newCell(id, filter.Level, x, y, size)}
			a.cell.MinScore = 1
			acc[id] = a
		}
		a.values = append(a.values, score.Score)
		a.lengths = append(a.lengths, seg.Length)
		a.cell.SegmentCount++
		a.cell.FeedbackCount += score.NumFeedback
		a.cell.MinScore = math.Min(a.cell.MinScore, score.Score)
	}

	cells := make([]models.GridCell, 0, len(acc))
	for _, a := range acc {
		if a.cell.FeedbackCount < filter.MinFeedback {
			continue
		}
		mean, ok := stats.WeightedMean(a.values, a.lengths)
		if !ok {
			mean = stats.Mean(a.values)
		}
		a.cell.MeanScore = mean
		cells = append(cells, a.cell)
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].MeanScore != cells[j].MeanScore {
			return cells[i].MeanScore < cells[j].MeanScore
		}
		return cells[i].GridID < cells[j].GridID
	})

	return cells, snap, nil
}

// Heatmap renders grid cells as weighted points for the given metric
func (s *GridService) Heatmap(ctx context.Context, level int, metric string) (*models.HeatmapResponse, error) {
	if metric == "" {
		metric = models.HeatmapDanger
	}
	if metric != models.HeatmapDanger && metric != models.HeatmapFeedback {
		return nil, apperrors.ErrInvalidInput.WithMessage("unknown heatmap metric %q", metric)
	}
	if level == 0 {
		level = DefaultGridLevel
	}

	cells, snap, err := s.GetGridCells(ctx, models.GridFilter{Level: level})
	if err != nil {
		return nil, err
	}

	resp := &models.HeatmapResponse{
		Points:       make([]models.HeatmapPoint, 0, len(cells)),
		Count:        len(cells),
		Metric:       metric,
		GridLevel:    level,
		ScoreVersion: snap.Version,
	}
	if len(cells) == 0 {
		return resp, nil
	}

	values := make([]float64, len(cells))
	for i, c := range cells {
		if metric == models.HeatmapDanger {
			values[i] = 1 - c.MeanScore
		} else {
			values[i] = float64(c.FeedbackCount)
		}
	}
	resp.MinValue = stats.Min(values)
	resp.MaxValue = stats.Max(values)

	for i, c := range cells {
		intensity := values[i]
		if metric == models.HeatmapFeedback && resp.MaxValue > 0 {
			intensity = values[i] / resp.MaxValue
		}
		resp.Points = append(resp.Points, models.HeatmapPoint{
			Lat:       c.CenterLat,
			Lng:       c.CenterLon,
			Intensity: stats.Clamp(intensity, 0, 1),
			Value:     values[i],
			Metric:    metric,
		})
	}

	return resp, nil
}

func cellSize(level int) float64 {
	return 360 / math.Exp2(float64(level))
}

func newCell(id string, level, x, y int, size float64) models.GridCell {
	minLon := float64(x)*size - 180
	minLat := float64(y)*size - 90
	return models.GridCell{
		GridID:    id,
		Level:     level,
		X:         x,
		Y:         y,
		MinLat:    minLat,
		MaxLat:    minLat + size,
		MinLon:    minLon,
		MaxLon:    minLon + size,
		CenterLat: minLat + size/2,
		CenterLon: minLon + size/2,
	}
}

// midpoint of the segment's endpoints
func midpoint(seg models.Segment) orb.Point {
	a, b := seg.Start(), seg.End()
	return orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

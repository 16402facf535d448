package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/service"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

// StatsHandler handles HTTP requests for service statistics
type StatsHandler struct {
	scores   *service.ScoreService
	segments *service.SegmentService
	trips    *service.TripService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(scores *service.ScoreService, segments *service.SegmentService, trips *service.TripService) *StatsHandler {
	return &StatsHandler{
		scores:   scores,
		segments: segments,
		trips:    trips,
	}
}

// GetSummary handles GET /api/v1/stats/summary
func (h *StatsHandler) GetSummary(c *gin.Context) {
	summary, err := h.scores.Summary(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"scores":      summary,
		"network":     h.segments.Info(),
		"activeTrips": h.trips.Active(),
	})
}

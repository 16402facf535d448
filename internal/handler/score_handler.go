package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/service"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

// ScoreHandler handles HTTP requests for segment safety scores
type ScoreHandler struct {
	service *service.ScoreService
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(service *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{service: service}
}

// GetScores handles GET /api/v1/scores
func (h *ScoreHandler) GetScores(c *gin.Context) {
	var filter models.ScoreFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	scores, snap, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"data":       scores,
		"total":      len(scores),
		"version":    snap.Version,
		"computedAt": snap.ComputedAt,
	})
}

// GetScore handles GET /api/v1/scores/:segment_id
func (h *ScoreHandler) GetScore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("segment_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid segment ID")
		return
	}

	score, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, score)
}

// ExportScores handles GET /api/v1/scores/export. The body is the bare
// segment id to score mapping so other tools can consume it directly.
func (h *ScoreHandler) ExportScores(c *gin.Context) {
	scores, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="segment_scores.json"`)
	c.JSON(200, scores)
}

// RecomputeScores handles POST /api/v1/scores/recompute
func (h *ScoreHandler) RecomputeScores(c *gin.Context) {
	snap, err := h.service.Recompute(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"version":         snap.Version,
		"computedAt":      snap.ComputedAt,
		"segmentsCovered": snap.SegmentsCovered,
	})
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/service"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

// GridHandler handles HTTP requests for score grid cells
type GridHandler struct {
	service *service.GridService
}

// NewGridHandler creates a new grid handler
func NewGridHandler(service *service.GridService) *GridHandler {
	return &GridHandler{service: service}
}

// GetGridCells handles GET /api/v1/scores/grid
func (h *GridHandler) GetGridCells(c *gin.Context) {
	var filter models.GridFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	cells, snap, err := h.service.GetGridCells(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"data":    cells,
		"count":   len(cells),
		"version": snap.Version,
	})
}

// GetHeatmap handles GET /api/v1/scores/heatmap
func (h *GridHandler) GetHeatmap(c *gin.Context) {
	level, err := strconv.Atoi(c.DefaultQuery("level", "0"))
	if err != nil || level < 0 || level > 24 {
		response.BadRequest(c, "Invalid level parameter")
		return
	}

	heatmap, err := h.service.Heatmap(c.Request.Context(), level, c.Query("metric"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, heatmap)
}

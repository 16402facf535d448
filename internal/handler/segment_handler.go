package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/service"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

// SegmentHandler handles HTTP requests for street segments
type SegmentHandler struct {
	service *service.SegmentService
}

// NewSegmentHandler creates a new segment handler
func NewSegmentHandler(service *service.SegmentService) *SegmentHandler {
	return &SegmentHandler{service: service}
}

type nearestQuery struct {
	Lat *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Lng *float64 `form:"lng" binding:"required,gte=-180,lte=180"`
}

// GetSegmentByID handles GET /api/v1/segments/:id
func (h *SegmentHandler) GetSegmentByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid segment ID")
		return
	}

	segment, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, segment)
}

// GetNearestSegment handles GET /api/v1/segments/nearest
func (h *SegmentHandler) GetNearestSegment(c *gin.Context) {
	var q nearestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, apperrors.ErrInvalidInput.WithCause(err))
		return
	}

	segment, err := h.service.Nearest(c.Request.Context(), *q.Lat, *q.Lng)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, segment)
}

// GetNetwork handles GET /api/v1/network
func (h *SegmentHandler) GetNetwork(c *gin.Context) {
	response.Success(c, h.service.Info())
}

package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/service"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

// TripHandler handles HTTP requests for live trips
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// StartTrip handles POST /api/v1/trips
func (h *TripHandler) StartTrip(c *gin.Context) {
	trip, err := h.service.Start(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, trip)
}

// PushPoints handles POST /api/v1/trips/:id/points
func (h *TripHandler) PushPoints(c *gin.Context) {
	var batch models.GPSBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		response.Fail(c, apperrors.ErrInvalidInput.WithCause(err))
		return
	}

	result, err := h.service.Push(c.Request.Context(), c.Param("id"), batch.Points)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, result)
}

// StopTrip handles POST /api/v1/trips/:id/stop
func (h *TripHandler) StopTrip(c *gin.Context) {
	// The body is optional
	var req models.StopRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Fail(c, apperrors.ErrInvalidInput.WithCause(err))
		return
	}

	result, err := h.service.Stop(c.Request.Context(), c.Param("id"), req.Timestamp)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, result)
}

// GetTrip handles GET /api/v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, trip)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/middleware"
	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/service"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

// FeedbackHandler handles HTTP requests for segment feedback
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// SubmitFeedback handles POST /api/v1/feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var in models.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, apperrors.ErrInvalidInput.WithCause(err))
		return
	}

	claims, _ := middleware.ClaimsFrom(c)
	result, err := h.service.Submit(c.Request.Context(), in, claims)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, result)
}

// GetFeedback handles GET /api/v1/feedback
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	var filter models.FeedbackFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter.Normalize()

	records, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       records,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"

	"github.com/safetrace/safetrace-backend-go/internal/models"
	"github.com/safetrace/safetrace-backend-go/internal/service"
	"github.com/safetrace/safetrace-backend-go/internal/spatial"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

// RouteHandler handles HTTP requests for route planning
type RouteHandler struct {
	service *service.RouteService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(service *service.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// GetRoute handles GET /api/v1/routes
func (h *RouteHandler) GetRoute(c *gin.Context) {
	var q models.RouteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, apperrors.ErrInvalidInput.WithCause(err))
		return
	}

	result, err := h.service.Route(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}

	if q.Format == "geojson" {
		c.JSON(http.StatusOK, routeFeatures(result))
		return
	}
	response.Success(c, result)
}

// routeFeatures renders both routes as LineString features
func routeFeatures(r *models.RouteResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	fastest := geojson.NewFeature(spatial.LineString(r.FastestRoute))
	fastest.Properties["variant"] = "fastest"
	fastest.Properties["length"] = r.FastestLength
	fastest.Properties["safety_cost"] = r.FastestSafetyCost
	fastest.Properties["segment_ids"] = r.FastestSegmentIDs
	fc.Append(fastest)

	safest := geojson.NewFeature(spatial.LineString(r.SafestRoute))
	safest.Properties["variant"] = "safest"
	safest.Properties["length"] = r.SafestLength
	safest.Properties["safety_cost"] = r.SafestSafetyCost
	safest.Properties["segment_ids"] = r.SafestSegmentIDs
	fc.Append(safest)

	return fc
}

package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/auth"
	"github.com/safetrace/safetrace-backend-go/internal/handler"
	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/middleware"
	"github.com/safetrace/safetrace-backend-go/internal/service"
)

// Dependencies holds everything the HTTP layer needs
type Dependencies struct {
	Logger  *zap.Logger
	Metrics *metrics.Collector

	Segments *service.SegmentService
	Trips    *service.TripService
	Feedback *service.FeedbackService
	Scores   *service.ScoreService
	Routes   *service.RouteService
	Grid     *service.GridService

	// Tokens may be nil to disable authentication
	Tokens       *auth.TokenManager
	AuthRequired bool

	// Limiter may be nil to disable rate limiting
	Limiter *middleware.RateLimiter

	AllowedOrigins []string
}

// SetupRouter builds the HTTP routes
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "SafeTrace API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	segmentHandler := handler.NewSegmentHandler(deps.Segments)
	tripHandler := handler.NewTripHandler(deps.Trips)
	feedbackHandler := handler.NewFeedbackHandler(deps.Feedback)
	scoreHandler := handler.NewScoreHandler(deps.Scores)
	routeHandler := handler.NewRouteHandler(deps.Routes)
	statsHandler := handler.NewStatsHandler(deps.Scores, deps.Segments, deps.Trips)
	gridHandler := handler.NewGridHandler(deps.Grid)

	api := r.Group("/api/v1")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimit(deps.Limiter))
	}
	{
		api.GET("/network", segmentHandler.GetNetwork)

		segments := api.Group("/segments")
		{
			segments.GET("/nearest", segmentHandler.GetNearestSegment)
			segments.GET("/:id", segmentHandler.GetSegmentByID)
		}

		trips := api.Group("/trips")
		{
			trips.POST("", tripHandler.StartTrip)
			trips.GET("/:id", tripHandler.GetTrip)
			trips.POST("/:id/points", tripHandler.PushPoints)
			trips.POST("/:id/stop", tripHandler.StopTrip)
		}

		feedback := api.Group("/feedback")
		{
			feedback.POST("", middleware.Auth(deps.Tokens, deps.AuthRequired), feedbackHandler.SubmitFeedback)
			feedback.GET("", feedbackHandler.GetFeedback)
		}

		scores := api.Group("/scores")
		{
			scores.GET("", scoreHandler.GetScores)
			scores.GET("/export", scoreHandler.ExportScores)
			scores.GET("/grid", gridHandler.GetGridCells)
			scores.GET("/heatmap", gridHandler.GetHeatmap)
			scores.GET("/:segment_id", scoreHandler.GetScore)
			scores.POST("/recompute", middleware.Auth(deps.Tokens, deps.AuthRequired), scoreHandler.RecomputeScores)
		}

		api.GET("/routes", routeHandler.GetRoute)
		api.GET("/stats/summary", statsHandler.GetSummary)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

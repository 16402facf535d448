package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/safetrace/safetrace-backend-go/internal/api"
	"github.com/safetrace/safetrace-backend-go/internal/auth"
	"github.com/safetrace/safetrace-backend-go/internal/config"
	"github.com/safetrace/safetrace-backend-go/internal/database"
	"github.com/safetrace/safetrace-backend-go/internal/logger"
	"github.com/safetrace/safetrace-backend-go/internal/metrics"
	"github.com/safetrace/safetrace-backend-go/internal/middleware"
	"github.com/safetrace/safetrace-backend-go/internal/network"
	"github.com/safetrace/safetrace-backend-go/internal/repository"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
	"github.com/safetrace/safetrace-backend-go/internal/service"
	"github.com/safetrace/safetrace-backend-go/internal/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)
	m := metrics.NewCollector("safetrace")

	db, err := database.Open(cfg.Database, zl)
	if err != nil {
		return err
	}
	defer db.Close()

	// The street network must load completely or the server does not start
	registry, err := network.Load(cfg.Network.SegmentsPath, zl)
	if err != nil {
		return err
	}
	observeNetwork(m, registry.Current())

	feedbackStore := repository.NewFeedbackRepository(db)
	var publisher service.ScorePublisher
	if cfg.Scoring.Persist {
		scoreRepo := repository.NewScoreRepository(db)
		if prev, err := scoreRepo.Load(ctx); err != nil {
			zl.Warn("Failed to read last published scores", zap.Error(err))
		} else if prev != nil {
			zl.Info("Found published scores",
				zap.Int64("feedback_version", prev.Version),
				zap.Int("segments", len(prev.Scores)),
			)
		}
		publisher = scoreRepo
	}

	engine := scoring.NewEngine(
		scoring.WithTagModifiers(cfg.Scoring.TagModifiers),
		scoring.WithPersonaRules(cfg.Scoring.PersonaRules),
		scoring.WithDecay(cfg.Scoring.DecayPerDay),
	)
	scores := service.NewScoreService(feedbackStore, engine, publisher, m, zl)
	if _, err := scores.Recompute(ctx); err != nil {
		return err
	}

	trips := service.NewTripService(registry, trip.Config{
		StartSpeed:      cfg.Trip.StartSpeed,
		StillSpeed:      cfg.Trip.StillSpeed,
		MaxStillSamples: cfg.Trip.MaxStillSamples,
	}, cfg.Trip.SessionTTL, cfg.Trip.MaxSessions, m, zl)

	routes, err := service.NewRouteService(registry, scores, cfg.Routing.CacheSize, m, zl)
	if err != nil {
		return err
	}

	registry.OnReload(func(snap *network.Snapshot) {
		observeNetwork(m, snap)
		routes.Purge()
	})
	if cfg.Network.Watch {
		if err := registry.Watch(ctx); err != nil {
			return err
		}
	}

	go scores.Run(ctx, cfg.Scoring.RefreshInterval)
	go trips.RunCleanup(ctx, cfg.Trip.SessionTTL/4)

	var tokens *auth.TokenManager
	if cfg.Auth.JWTSecret != "" {
		if tokens, err = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL); err != nil {
			return err
		}
	} else if cfg.Auth.Required {
		return errors.New("auth is required but JWT_SECRET is not set")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(ctx, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}

	router := api.SetupRouter(api.Dependencies{
		Logger:         zl,
		Metrics:        m,
		Segments:       service.NewSegmentService(registry, scores),
		Trips:          trips,
		Feedback:       service.NewFeedbackService(feedbackStore, registry, trips, m, zl),
		Scores:         scores,
		Routes:         routes,
		Grid:           service.NewGridService(registry, scores),
		Tokens:         tokens,
		AuthRequired:   cfg.Auth.Required,
		Limiter:        limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("Server starting",
			zap.String("addr", cfg.Server.Port),
			zap.Int("segments", len(registry.Current().Segments)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func observeNetwork(m *metrics.Collector, snap *network.Snapshot) {
	m.NetworkReloads.Inc()
	m.NetworkNodes.Set(float64(snap.Graph.NodeCount()))
	m.NodeDrifts.Set(float64(len(snap.Graph.Drifts())))
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"tasknotify/internal/audit"
	"tasknotify/internal/config"
	"tasknotify/internal/constants"
	"tasknotify/internal/logger"
	"tasknotify/internal/sidecar"
	"tasknotify/pkg/bootstrap"
	"tasknotify/pkg/metrics"
	"tasknotify/pkg/ratelimit"
)

type App struct {
	*bootstrap.Base
	service *audit.Service
	server  *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base: bootstrap.NewBase(cfg, log, "audit-service"),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterIngressMetrics()
	metrics.RegisterAuditMetrics()

	store := sidecar.NewStateStore(a.Sidecar, a.Config.Sidecar.StateStore)
	a.service = audit.NewService(store, a.Config.Audit.IndexSize, a.Logger)

	var queryMiddleware []gin.HandlerFunc
	if a.Config.RateLimit.Enabled {
		metrics.RegisterRateLimitMetrics()
		rlCfg := ratelimit.DefaultConfig()
		if a.Config.RateLimit.RPS > 0 {
			rlCfg.RPS = a.Config.RateLimit.RPS
		}
		if a.Config.RateLimit.Burst > 0 {
			rlCfg.Burst = a.Config.RateLimit.Burst
		}
		if a.Config.RateLimit.CleanupInterval > 0 {
			rlCfg.CleanupInterval = time.Duration(a.Config.RateLimit.CleanupInterval) * time.Second
		}
		if a.Config.RateLimit.MaxAge > 0 {
			rlCfg.MaxAge = time.Duration(a.Config.RateLimit.MaxAge) * time.Second
		}
		queryMiddleware = append(queryMiddleware, ratelimit.RateLimitMiddleware(rlCfg))
	}

	router := a.NewRouter()
	audit.NewHandler(a.service, a.Logger).RegisterRoutes(router, queryMiddleware...)

	a.server = a.NewServer(router)
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(gCtx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
		}

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}

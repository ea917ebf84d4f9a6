package main

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"tasknotify/internal/config"
	"tasknotify/internal/constants"
	"tasknotify/internal/dispatch"
	"tasknotify/internal/logger"
	"tasknotify/internal/push"
	"tasknotify/pkg/bootstrap"
	"tasknotify/pkg/metrics"
)

type App struct {
	*bootstrap.Base
	hub    *push.Hub
	server *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base: bootstrap.NewBase(cfg, log, "notification-service"),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterIngressMetrics()
	metrics.RegisterPushMetrics()

	a.hub = push.NewHub(a.Logger)
	validator := push.NewTokenValidator(a.Config.Auth.JWTSecret)

	router := a.NewRouter()
	push.NewHandler(a.hub, validator, a.Logger).RegisterRoutes(router)
	dispatch.NewHandler(a.hub, a.Logger).RegisterRoutes(router)

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

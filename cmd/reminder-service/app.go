package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"tasknotify/internal/config"
	"tasknotify/internal/constants"
	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/internal/reminder"
	"tasknotify/internal/sidecar"
	"tasknotify/internal/taskapi"
	"tasknotify/pkg/bootstrap"
	"tasknotify/pkg/circuitbreaker"
	"tasknotify/pkg/metrics"
)

type App struct {
	*bootstrap.Base
	service *reminder.Service
	server  *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base: bootstrap.NewBase(cfg, log, "reminder-service"),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterIngressMetrics()
	metrics.RegisterReminderMetrics()
	metrics.RegisterPublisherMetrics()

	jobs := sidecar.NewJobs(a.Sidecar)
	invoker := sidecar.NewInvoker(a.Sidecar)
	tasks := taskapi.NewClient(invoker, a.Config.Sidecar.TaskAppID, newBackendBreaker(a.Config), a.Logger)
	bus := sidecar.NewBus(a.Sidecar, a.Config.Sidecar.PubsubName)
	publisher := event.NewPublisher(bus, a.Config.Events, a.Config.Sidecar, a.Logger)
	a.service = reminder.NewService(jobs, tasks, publisher, a.Logger)

	router := a.NewRouter()
	reminder.NewHandler(a.service, a.Logger).RegisterRoutes(router)

	a.server = a.NewServer(router)
	return nil
}

func newBackendBreaker(cfg *config.Config) *circuitbreaker.Wrapper {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	metrics.RegisterCircuitBreakerMetrics()

	breakerCfg := circuitbreaker.DefaultConfig("task-backend")
	if cfg.CircuitBreaker.MaxRequests > 0 {
		breakerCfg.MaxRequests = cfg.CircuitBreaker.MaxRequests
	}
	if cfg.CircuitBreaker.Interval > 0 {
		breakerCfg.Interval = cfg.CircuitBreaker.Interval
	}
	if cfg.CircuitBreaker.Timeout > 0 {
		breakerCfg.Timeout = cfg.CircuitBreaker.Timeout
	}
	if cfg.CircuitBreaker.MinRequests > 0 && cfg.CircuitBreaker.FailureRatio > 0 {
		breakerCfg.ReadyToTrip = func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.CircuitBreaker.MinRequests && failureRatio >= cfg.CircuitBreaker.FailureRatio
		}
	}
	return circuitbreaker.NewWrapper(breakerCfg)
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

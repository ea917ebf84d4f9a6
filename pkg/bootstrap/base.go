package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tasknotify/internal/config"
	"tasknotify/internal/logger"
	"tasknotify/internal/sidecar"
	"tasknotify/pkg/health"
	"tasknotify/pkg/middleware"
)

// Base carries the wiring every service shares: config, logger and the
// substrate client.
type Base struct {
	Config  *config.Config
	Logger  logger.Logger
	Sidecar *sidecar.Client

	serviceName string
}

func NewBase(cfg *config.Config, log logger.Logger, serviceName string) *Base {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(serviceName)
	}

	return &Base{
		Config:      cfg,
		Logger:      log,
		Sidecar:     sidecar.NewClient(cfg.Sidecar, log),
		serviceName: serviceName,
	}
}

func (b *Base) ServiceName() string {
	return b.serviceName
}

// NewRouter builds the gin engine with the shared middleware stack plus the
// health, metrics and info endpoints every service exposes.
func (b *Base) NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(b.Logger))
	router.Use(middleware.RecoveryMiddleware(b.Logger))

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewSidecarChecker(b.Sidecar.HealthURL()))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": b.serviceName,
			"status":  "running",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// NewServer wraps a router in an http.Server with the configured timeouts.
func (b *Base) NewServer(router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", b.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  b.Config.Server.ReadTimeout,
		WriteTimeout: b.Config.Server.WriteTimeout,
	}
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Info("Application exited successfully")
	return nil
}

package reminder

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/pkg/logging"
	"tasknotify/pkg/metrics"
)

// Handler hosts the four lifecycle ingresses plus the job-callback ingress.
// Every route acknowledges unconditionally; scheduling failures are a silent
// degradation, not a reason for the bus to redeliver.
type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/events/task-created", h.HandleTaskCreated)
	router.POST("/events/task-updated", h.HandleTaskUpdated)
	router.POST("/events/task-deleted", h.HandleTaskDeleted)
	router.POST("/events/task-completed", h.HandleTaskCompleted)
	router.POST("/job/:jobName", h.HandleJobCallback)
	router.GET("/subscribe", h.HandleSubscriptions)
}

func (h *Handler) HandleTaskCreated(c *gin.Context) {
	var data event.TaskCreatedData
	ctx, ok := h.decode(c, "task.created", &data)
	if ok {
		h.service.HandleCreated(ctx, data)
	}
	c.Status(http.StatusOK)
}

func (h *Handler) HandleTaskUpdated(c *gin.Context) {
	var data event.TaskUpdatedData
	ctx, ok := h.decode(c, "task.updated", &data)
	if ok {
		h.service.HandleUpdated(ctx, data)
	}
	c.Status(http.StatusOK)
}

func (h *Handler) HandleTaskDeleted(c *gin.Context) {
	var data event.TaskDeletedData
	ctx, ok := h.decode(c, "task.deleted", &data)
	if ok {
		h.service.HandleDeleted(ctx, data)
	}
	c.Status(http.StatusOK)
}

func (h *Handler) HandleTaskCompleted(c *gin.Context) {
	var data event.TaskCompletedData
	ctx, ok := h.decode(c, "task.completed", &data)
	if ok {
		h.service.HandleCompleted(ctx, data)
	}
	c.Status(http.StatusOK)
}

func (h *Handler) HandleJobCallback(c *gin.Context) {
	jobName := c.Param("jobName")

	var body jobCallbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.WarnwCtx(c.Request.Context(), "Discarding malformed job callback",
			"job_name", jobName,
			"error", err,
		)
		c.Status(http.StatusOK)
		return
	}

	h.service.HandleJobCallback(c.Request.Context(), jobName, body.Data)
	c.Status(http.StatusOK)
}

func (h *Handler) HandleSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, []interface{}{})
}

// decode parses an envelope and its payload, returning ok=false when either
// is unusable. Callers still acknowledge the delivery either way.
func (h *Handler) decode(c *gin.Context, expectedType string, data interface{}) (context.Context, bool) {
	var envelope event.Envelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.WarnwCtx(c.Request.Context(), "Discarding malformed envelope",
			"expected_type", expectedType,
			"error", err,
		)
		return c.Request.Context(), false
	}

	ctx := logging.WithEventID(c.Request.Context(), envelope.ID)
	metrics.EventsReceivedTotal.WithLabelValues("reminder-service", envelope.Type).Inc()

	if err := envelope.DecodeData(data); err != nil {
		h.logger.WarnwCtx(ctx, "Envelope has no usable payload",
			"type", envelope.Type,
			"error", err,
		)
		return ctx, false
	}

	return ctx, true
}

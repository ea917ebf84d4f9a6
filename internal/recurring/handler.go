package recurring

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/pkg/logging"
	"tasknotify/pkg/metrics"
)

// Handler is the webhook ingress for task.completed deliveries. It always
// acknowledges: a missed recurrence is preferable to unbounded bus retries.
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
	router.POST("/events/task-completed", h.HandleTaskCompleted)
	router.GET("/subscribe", h.HandleSubscriptions)
}

func (h *Handler) HandleTaskCompleted(c *gin.Context) {
	var envelope event.Envelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.WarnwCtx(c.Request.Context(), "Discarding malformed envelope", "error", err)
		c.Status(http.StatusOK)
		return
	}

	ctx := logging.WithEventID(c.Request.Context(), envelope.ID)
	metrics.EventsReceivedTotal.WithLabelValues("recurring-service", envelope.Type).Inc()

	var data event.TaskCompletedData
	if err := envelope.DecodeData(&data); err != nil {
		h.logger.WarnwCtx(ctx, "Envelope has no usable completion payload", "error", err)
		c.Status(http.StatusOK)
		return
	}

	if err := h.service.HandleCompleted(ctx, data); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to generate next occurrence",
			"task_id", data.TaskID,
			"error", err,
		)
	}

	c.Status(http.StatusOK)
}

func (h *Handler) HandleSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, []interface{}{})
}

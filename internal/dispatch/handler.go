package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/pkg/logging"
	"tasknotify/pkg/metrics"
)

// Broadcaster is the capability the dispatcher needs from the push hub. The
// hub implements it; the dispatcher never sees the concrete type.
type Broadcaster interface {
	BroadcastEvent(userID, eventType string, data interface{})
}

// Handler is the webhook ingress the bus invokes for task.* and
// reminder.triggered topics. It always acknowledges delivery: push fan-out is
// best-effort and a redelivered event would only produce a duplicate
// notification.
type Handler struct {
	broadcaster Broadcaster
	logger      logger.Logger
}

func NewHandler(broadcaster Broadcaster, log logger.Logger) *Handler {
	return &Handler{
		broadcaster: broadcaster,
		logger:      log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/events/task", h.HandleTaskEvent)
	router.OPTIONS("/events/task", h.HandlePreflight)
	router.GET("/subscribe", h.HandleSubscriptions)
}

func (h *Handler) HandleTaskEvent(c *gin.Context) {
	var envelope event.Envelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.WarnwCtx(c.Request.Context(), "Discarding malformed envelope", "error", err)
		c.Status(http.StatusOK)
		return
	}

	ctx := logging.WithEventID(c.Request.Context(), envelope.ID)
	metrics.EventsReceivedTotal.WithLabelValues("notification-service", envelope.Type).Inc()

	userID := envelope.UserID()
	if userID == "" {
		h.logger.WarnwCtx(ctx, "Envelope has no broadcast target", "type", envelope.Type)
		c.Status(http.StatusOK)
		return
	}

	h.broadcaster.BroadcastEvent(userID, envelope.Type, envelope.Data)
	h.logger.InfowCtx(ctx, "Dispatched event to push hub",
		"type", envelope.Type,
		"user_id", userID,
	)

	c.Status(http.StatusOK)
}

func (h *Handler) HandlePreflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// HandleSubscriptions answers the bus's subscription discovery probe. Topic
// bindings are configured declaratively out of band, so the list is empty.
func (h *Handler) HandleSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, []interface{}{})
}

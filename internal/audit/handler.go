package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/pkg/errors"
	"tasknotify/pkg/logging"
	"tasknotify/pkg/metrics"
)

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

func (h *Handler) RegisterRoutes(router *gin.Engine, queryMiddleware ...gin.HandlerFunc) {
	router.POST("/events/audit", h.HandleAuditEvent)
	router.GET("/subscribe", h.HandleSubscriptions)

	api := router.Group("/api/audit", queryMiddleware...)
	{
		api.GET("", h.ListEntries)
		api.GET("/:id", h.GetEntry)
		api.GET("/task/:taskId", h.ListTaskEntries)
	}
}

// HandleAuditEvent consumes bus deliveries. The ack is unconditional: a
// storage hiccup must not turn into an unbounded redelivery loop, so a failed
// write is logged and the entry is simply missing from the trail.
func (h *Handler) HandleAuditEvent(c *gin.Context) {
	var envelope event.Envelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.WarnwCtx(c.Request.Context(), "Discarding malformed envelope", "error", err)
		c.Status(http.StatusOK)
		return
	}

	ctx := logging.WithEventID(c.Request.Context(), envelope.ID)
	metrics.EventsReceivedTotal.WithLabelValues("audit-service", envelope.Type).Inc()

	if err := h.service.Record(ctx, envelope); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to record audit entry", "error", err)
	}

	c.Status(http.StatusOK)
}

func (h *Handler) ListEntries(c *gin.Context) {
	filter := Filter{
		EventType: c.Query("eventType"),
	}

	if raw := c.Query("taskId"); raw != "" {
		taskID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithDetail("message", "taskId must be an integer")))
			return
		}
		filter.TaskID = &taskID
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithDetail("message", "limit must be a positive integer")))
			return
		}
		filter.Limit = limit
	}

	h.list(c, filter)
}

func (h *Handler) ListTaskEntries(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithDetail("message", "taskId must be an integer")))
		return
	}

	h.list(c, Filter{TaskID: &taskID})
}

func (h *Handler) list(c *gin.Context, filter Filter) {
	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.ErrorwCtx(c.Request.Context(), "Audit query failed, returning partial result", "error", err)
	}

	c.JSON(http.StatusOK, ListResponse{
		Items: entries,
		Total: len(entries),
	})
}

func (h *Handler) GetEntry(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, errors.ToErrorResponse(errors.ErrNotFound))
			return
		}
		h.logger.ErrorwCtx(c.Request.Context(), "Audit lookup failed", "error", err)
		c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *Handler) HandleSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, []interface{}{})
}

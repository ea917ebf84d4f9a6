package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tasknotify/internal/config"
	"tasknotify/internal/constants"
	"tasknotify/internal/logger"
	"tasknotify/internal/sidecar"
	"tasknotify/pkg/errors"
	"tasknotify/pkg/metrics"
	"tasknotify/pkg/retry"
)

// Publisher builds envelopes for task lifecycle transitions and pushes them to
// the bus with retry and backoff. Publishing is best-effort: a false return
// must never roll back or block the originating task mutation.
type Publisher struct {
	bus           sidecar.EventBus
	source        string
	taskTopic     string
	reminderTopic string
	enabled       bool
	policy        retry.Policy
	logger        logger.Logger

	// Injectable for testing.
	now   func() time.Time
	newID func() string
	sleep func(ctx context.Context, d time.Duration) bool
}

func NewPublisher(bus sidecar.EventBus, cfg config.EventsConfig, sidecarCfg config.SidecarConfig, log logger.Logger) *Publisher {
	policy := retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		Multiplier:      cfg.Retry.Multiplier,
	}
	if policy.MaxAttempts <= 0 {
		policy = retry.DefaultPolicy()
	}

	return &Publisher{
		bus:           bus,
		source:        cfg.Source,
		taskTopic:     sidecarCfg.TaskTopic,
		reminderTopic: sidecarCfg.ReminderTopic,
		enabled:       cfg.Enabled,
		policy:        policy,
		logger:        log,
		now:           time.Now,
		newID:         func() string { return constants.EventIDPrefix + uuid.New().String() },
		sleep:         sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Publish emits one logical event. The envelope id is generated once per call;
// retries reuse it.
func (p *Publisher) Publish(ctx context.Context, eventType string, data interface{}) bool {
	if !p.enabled {
		p.logger.DebugwCtx(ctx, "Events disabled, skipping publish", "type", eventType)
		return true
	}

	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.ErrorwCtx(ctx, "Failed to encode event payload",
			"type", eventType,
			"error", err,
		)
		return false
	}

	envelope := Envelope{
		SpecVersion:     SpecVersion,
		Type:            eventType,
		Source:          p.source,
		ID:              p.newID(),
		Time:            p.now().UTC().Format(time.RFC3339),
		DataContentType: DataContentType,
		Data:            payload,
	}

	topic := p.taskTopic
	if eventType == TypeReminderTriggered {
		topic = p.reminderTopic
	}

	bo := retry.ExponentialBackoff(p.policy.InitialInterval, p.policy.MaxInterval, p.policy.Multiplier)
	bo.Reset()

	var lastErr error
	for attempt := 0; attempt < p.policy.MaxAttempts; attempt++ {
		err := p.bus.Publish(ctx, topic, envelope)
		if err == nil {
			metrics.EventsPublishedTotal.WithLabelValues(eventType, "success").Inc()
			p.logger.InfowCtx(ctx, "Published event",
				"type", eventType,
				"event_id", envelope.ID,
				"topic", topic,
			)
			return true
		}

		lastErr = err

		if !errors.IsRetryable(err) {
			metrics.EventsPublishedTotal.WithLabelValues(eventType, "failed").Inc()
			p.logger.ErrorwCtx(ctx, "Failed to publish event, not retryable",
				"type", eventType,
				"event_id", envelope.ID,
				"error", err,
			)
			return false
		}

		delay := bo.NextBackOff()
		metrics.PublishRetryAttemptsTotal.WithLabelValues(eventType).Inc()
		p.logger.WarnwCtx(ctx, "Publish failed, backing off",
			"type", eventType,
			"event_id", envelope.ID,
			"attempt", attempt+1,
			"max_attempts", p.policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if !p.sleep(ctx, delay) {
			break
		}
	}

	metrics.EventsPublishedTotal.WithLabelValues(eventType, "failed").Inc()
	p.logger.ErrorwCtx(ctx, "Failed to publish event after all attempts",
		"type", eventType,
		"event_id", envelope.ID,
		"attempts", p.policy.MaxAttempts,
		"error", lastErr,
	)
	return false
}

func (p *Publisher) PublishTaskCreated(ctx context.Context, data TaskCreatedData) bool {
	return p.Publish(ctx, TypeTaskCreated, data)
}

func (p *Publisher) PublishTaskUpdated(ctx context.Context, data TaskUpdatedData) bool {
	return p.Publish(ctx, TypeTaskUpdated, data)
}

func (p *Publisher) PublishTaskCompleted(ctx context.Context, data TaskCompletedData) bool {
	return p.Publish(ctx, TypeTaskCompleted, data)
}

func (p *Publisher) PublishTaskDeleted(ctx context.Context, data TaskDeletedData) bool {
	return p.Publish(ctx, TypeTaskDeleted, data)
}

func (p *Publisher) PublishReminderTriggered(ctx context.Context, data ReminderTriggeredData) bool {
	return p.Publish(ctx, TypeReminderTriggered, data)
}

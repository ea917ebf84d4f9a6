package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotify/internal/config"
	"tasknotify/internal/logger"
	"tasknotify/pkg/errors"
)

type publishCall struct {
	topic    string
	envelope Envelope
}

type fakeBus struct {
	calls []publishCall
	errs  []error
}

func (b *fakeBus) Publish(ctx context.Context, topic string, event interface{}) error {
	b.calls = append(b.calls, publishCall{topic: topic, envelope: event.(Envelope)})
	if len(b.calls) <= len(b.errs) {
		return b.errs[len(b.calls)-1]
	}
	return nil
}

func testConfig() (config.EventsConfig, config.SidecarConfig) {
	return config.EventsConfig{
			Enabled: true,
			Source:  "task-service",
			Retry: config.RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     10 * time.Second,
				Multiplier:      2.0,
			},
		}, config.SidecarConfig{
			TaskTopic:     "task-events",
			ReminderTopic: "reminder-events",
		}
}

func newTestPublisher(bus *fakeBus) (*Publisher, *[]time.Duration) {
	eventsCfg, sidecarCfg := testConfig()
	p := NewPublisher(bus, eventsCfg, sidecarCfg, logger.NopLogger())

	delays := &[]time.Duration{}
	p.sleep = func(ctx context.Context, d time.Duration) bool {
		*delays = append(*delays, d)
		return true
	}
	p.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return p, delays
}

func TestPublishSucceedsFirstAttempt(t *testing.T) {
	bus := &fakeBus{}
	p, delays := newTestPublisher(bus)

	ok := p.PublishTaskCreated(context.Background(), TaskCreatedData{TaskID: 1, UserID: "u1", Title: "Buy milk"})

	assert.True(t, ok)
	require.Len(t, bus.calls, 1)
	assert.Empty(t, *delays)

	envelope := bus.calls[0].envelope
	assert.Equal(t, "task-events", bus.calls[0].topic)
	assert.Equal(t, SpecVersion, envelope.SpecVersion)
	assert.Equal(t, TypeTaskCreated, envelope.Type)
	assert.Equal(t, "task-service", envelope.Source)
	assert.Equal(t, DataContentType, envelope.DataContentType)
	assert.Contains(t, envelope.ID, "evt-")
	assert.Equal(t, "2025-06-15T12:00:00Z", envelope.Time)

	var data TaskCreatedData
	require.NoError(t, envelope.DecodeData(&data))
	assert.Equal(t, int64(1), data.TaskID)
	assert.Equal(t, "Buy milk", data.Title)
}

func TestPublishRetriesUntilSuccess(t *testing.T) {
	unavailable := errors.ErrServiceUnavailable.AsRetryable()
	bus := &fakeBus{errs: []error{unavailable, unavailable}}
	p, delays := newTestPublisher(bus)

	ok := p.PublishTaskUpdated(context.Background(), TaskUpdatedData{TaskID: 2, UserID: "u1"})

	assert.True(t, ok)
	require.Len(t, bus.calls, 3)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 1 * time.Second}, *delays)

	// Retries carry the same envelope, id included.
	assert.Equal(t, bus.calls[0].envelope.ID, bus.calls[1].envelope.ID)
	assert.Equal(t, bus.calls[0].envelope.ID, bus.calls[2].envelope.ID)
}

func TestPublishExhaustsAttempts(t *testing.T) {
	unavailable := errors.ErrServiceUnavailable.AsRetryable()
	bus := &fakeBus{errs: []error{unavailable, unavailable, unavailable}}
	p, delays := newTestPublisher(bus)

	ok := p.PublishTaskDeleted(context.Background(), TaskDeletedData{TaskID: 3, UserID: "u1"})

	assert.False(t, ok)
	assert.Len(t, bus.calls, 3)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 1 * time.Second, 2 * time.Second}, *delays)
}

func TestPublishFatalErrorDoesNotRetry(t *testing.T) {
	bus := &fakeBus{errs: []error{errors.ErrValidation.AsFatal()}}
	p, delays := newTestPublisher(bus)

	ok := p.PublishTaskCompleted(context.Background(), TaskCompletedData{TaskID: 4, UserID: "u1"})

	assert.False(t, ok)
	assert.Len(t, bus.calls, 1)
	assert.Empty(t, *delays)
}

func TestPublishDisabledShortCircuits(t *testing.T) {
	bus := &fakeBus{}
	eventsCfg, sidecarCfg := testConfig()
	eventsCfg.Enabled = false
	p := NewPublisher(bus, eventsCfg, sidecarCfg, logger.NopLogger())

	ok := p.PublishTaskCreated(context.Background(), TaskCreatedData{TaskID: 5, UserID: "u1"})

	assert.True(t, ok)
	assert.Empty(t, bus.calls)
}

func TestPublishReminderTriggeredUsesReminderTopic(t *testing.T) {
	bus := &fakeBus{}
	p, _ := newTestPublisher(bus)

	ok := p.PublishReminderTriggered(context.Background(), ReminderTriggeredData{TaskID: 6, UserID: "u1", Title: "Call dentist"})

	assert.True(t, ok)
	require.Len(t, bus.calls, 1)
	assert.Equal(t, "reminder-events", bus.calls[0].topic)
	assert.Equal(t, TypeReminderTriggered, bus.calls[0].envelope.Type)
}

func TestPublishUnencodablePayload(t *testing.T) {
	bus := &fakeBus{}
	p, _ := newTestPublisher(bus)

	ok := p.Publish(context.Background(), TypeTaskCreated, make(chan int))

	assert.False(t, ok)
	assert.Empty(t, bus.calls)
}

func TestEnvelopeProbes(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantUser   string
		wantTaskID int64
	}{
		{
			name:       "both fields present",
			data:       `{"taskId":42,"userId":"u7"}`,
			wantUser:   "u7",
			wantTaskID: 42,
		},
		{
			name:       "fields absent",
			data:       `{"title":"x"}`,
			wantUser:   "",
			wantTaskID: 0,
		},
		{
			name:       "not an object",
			data:       `[1,2]`,
			wantUser:   "",
			wantTaskID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Envelope{Data: json.RawMessage(tt.data)}
			assert.Equal(t, tt.wantUser, e.UserID())
			assert.Equal(t, tt.wantTaskID, e.TaskID())
		})
	}
}

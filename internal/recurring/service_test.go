package recurring

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/internal/taskapi"
	"tasknotify/pkg/errors"
)

func TestAdvance(t *testing.T) {
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		base     time.Time
		rule     string
		interval int
		want     time.Time
	}{
		{
			name:     "daily",
			base:     base,
			rule:     RuleDaily,
			interval: 1,
			want:     time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "daily interval three",
			base:     base,
			rule:     RuleDaily,
			interval: 3,
			want:     time.Date(2025, 1, 18, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly",
			base:     base,
			rule:     RuleWeekly,
			interval: 1,
			want:     time.Date(2025, 1, 22, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly interval two",
			base:     base,
			rule:     RuleWeekly,
			interval: 2,
			want:     time.Date(2025, 1, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly",
			base:     base,
			rule:     RuleMonthly,
			interval: 1,
			want:     time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly clamps jan 31 to feb 28",
			base:     time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
			rule:     RuleMonthly,
			interval: 1,
			want:     time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly clamps to leap day",
			base:     time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			rule:     RuleMonthly,
			interval: 1,
			want:     time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly across year boundary",
			base:     time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC),
			rule:     RuleMonthly,
			interval: 1,
			want:     time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "zero interval treated as one",
			base:     base,
			rule:     RuleDaily,
			interval: 0,
			want:     time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "unknown rule falls back to days",
			base:     base,
			rule:     "hourly",
			interval: 2,
			want:     time.Date(2025, 1, 17, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Advance(tt.base, tt.rule, tt.interval))
		})
	}
}

type fakeRPC struct {
	task    *taskapi.Task
	getErr  error
	created *taskapi.CreateTaskRequest
	user    string
}

func (f *fakeRPC) Get(ctx context.Context, appID, method string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return json.Marshal(f.task)
}

func (f *fakeRPC) Post(ctx context.Context, appID, method string, body interface{}, headers map[string]string) ([]byte, error) {
	req := body.(taskapi.CreateTaskRequest)
	f.created = &req
	f.user = headers["X-User-Id"]
	return []byte(`{"id":99,"title":"` + req.Title + `"}`), nil
}

func newTestService(rpc *fakeRPC) *Service {
	tasks := taskapi.NewClient(rpc, "backend", nil, logger.NopLogger())
	return NewService(tasks, logger.NopLogger())
}

func completedEvent(rule string, interval int) event.TaskCompletedData {
	return event.TaskCompletedData{
		TaskID:      7,
		UserID:      "u1",
		IsRecurring: true,
		Recurrence:  &event.Recurrence{Rule: rule, Interval: interval},
		CompletedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).Unix(),
	}
}

func TestHandleCompletedNonRecurring(t *testing.T) {
	rpc := &fakeRPC{}
	svc := newTestService(rpc)

	err := svc.HandleCompleted(context.Background(), event.TaskCompletedData{TaskID: 7, UserID: "u1"})

	require.NoError(t, err)
	assert.Nil(t, rpc.created)
}

func TestHandleCompletedCreatesNextOccurrence(t *testing.T) {
	due := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	reminder := due.Add(-30 * time.Minute)
	rpc := &fakeRPC{
		task: &taskapi.Task{
			ID:         7,
			Title:      "Water plants",
			Priority:   "high",
			DueDate:    &due,
			ReminderAt: &reminder,
			Tags:       []string{"home"},
		},
	}
	svc := newTestService(rpc)

	err := svc.HandleCompleted(context.Background(), completedEvent(RuleWeekly, 1))

	require.NoError(t, err)
	require.NotNil(t, rpc.created)
	assert.Equal(t, "u1", rpc.user)
	assert.Equal(t, "Water plants", rpc.created.Title)
	assert.Equal(t, "high", rpc.created.Priority)
	assert.Equal(t, []string{"home"}, rpc.created.Tags)

	require.NotNil(t, rpc.created.DueDate)
	assert.Equal(t, due.AddDate(0, 0, 7), *rpc.created.DueDate)

	// Reminder keeps its offset from the due date.
	require.NotNil(t, rpc.created.ReminderAt)
	assert.Equal(t, due.AddDate(0, 0, 7).Add(-30*time.Minute), *rpc.created.ReminderAt)

	require.NotNil(t, rpc.created.Recurrence)
	assert.Equal(t, RuleWeekly, rpc.created.Recurrence.Rule)
}

func TestHandleCompletedRespectsEndDate(t *testing.T) {
	due := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	rpc := &fakeRPC{
		task: &taskapi.Task{
			ID:         7,
			Title:      "Water plants",
			DueDate:    &due,
			Recurrence: &taskapi.TaskRecurrence{Rule: RuleWeekly, Interval: 1, EndDate: &end},
		},
	}
	svc := newTestService(rpc)

	err := svc.HandleCompleted(context.Background(), completedEvent(RuleWeekly, 1))

	// Past the end date is a terminated chain, not a failure.
	require.NoError(t, err)
	assert.Nil(t, rpc.created)
}

func TestHandleCompletedDefaultsPriority(t *testing.T) {
	due := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rpc := &fakeRPC{
		task: &taskapi.Task{ID: 7, Title: "Water plants", DueDate: &due},
	}
	svc := newTestService(rpc)

	err := svc.HandleCompleted(context.Background(), completedEvent(RuleDaily, 1))

	require.NoError(t, err)
	require.NotNil(t, rpc.created)
	assert.Equal(t, "medium", rpc.created.Priority)
}

func TestHandleCompletedFetchFailure(t *testing.T) {
	rpc := &fakeRPC{getErr: errors.ErrServiceUnavailable.AsRetryable()}
	svc := newTestService(rpc)

	err := svc.HandleCompleted(context.Background(), completedEvent(RuleDaily, 1))

	require.Error(t, err)
	assert.Nil(t, rpc.created)
}

func TestHandleCompletedUsesNowWhenNoDueDate(t *testing.T) {
	rpc := &fakeRPC{
		task: &taskapi.Task{ID: 7, Title: "Water plants"},
	}
	svc := newTestService(rpc)
	now := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	err := svc.HandleCompleted(context.Background(), completedEvent(RuleDaily, 1))

	require.NoError(t, err)
	require.NotNil(t, rpc.created)
	require.NotNil(t, rpc.created.DueDate)
	assert.Equal(t, now.AddDate(0, 0, 1), *rpc.created.DueDate)
}

package reminder

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"tasknotify/internal/constants"
	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/internal/sidecar"
	"tasknotify/internal/taskapi"
	"tasknotify/pkg/metrics"
)

// TriggerPublisher emits reminder.triggered back onto the bus when a job
// fires. The event publisher satisfies it.
type TriggerPublisher interface {
	PublishReminderTriggered(ctx context.Context, data event.ReminderTriggeredData) bool
}

// Service keeps at most one outstanding reminder job per task. The job name
// is derived from the task id, and every reschedule cancels before it
// schedules, preserving the one-job invariant. Substrate failures are logged
// and swallowed; they never surface to the bus as retryable errors.
type Service struct {
	jobs      sidecar.JobScheduler
	tasks     *taskapi.Client
	publisher TriggerPublisher
	logger    logger.Logger

	now func() time.Time
}

func NewService(jobs sidecar.JobScheduler, tasks *taskapi.Client, publisher TriggerPublisher, log logger.Logger) *Service {
	return &Service{
		jobs:      jobs,
		tasks:     tasks,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func JobName(taskID int64) string {
	return constants.ReminderJobPrefix + strconv.FormatInt(taskID, 10)
}

// Schedule registers a one-shot job. A reminder already in the past is
// skipped silently; that is not an error.
func (s *Service) Schedule(ctx context.Context, taskID int64, userID, title string, reminderAt int64) bool {
	delay := time.Unix(reminderAt, 0).Sub(s.now())
	if delay <= 0 {
		s.logger.InfowCtx(ctx, "Reminder time already passed, not scheduling",
			"task_id", taskID,
			"reminder_at", reminderAt,
		)
		return false
	}

	data := JobData{
		TaskID:     taskID,
		UserID:     userID,
		Title:      title,
		ReminderAt: reminderAt,
	}

	if err := s.jobs.Schedule(ctx, JobName(taskID), data, delay); err != nil {
		metrics.ReminderJobsTotal.WithLabelValues("schedule", "failed").Inc()
		s.logger.ErrorwCtx(ctx, "Failed to schedule reminder job",
			"task_id", taskID,
			"error", err,
		)
		return false
	}

	metrics.ReminderJobsTotal.WithLabelValues("schedule", "success").Inc()
	s.logger.InfowCtx(ctx, "Scheduled reminder job",
		"task_id", taskID,
		"delay", delay,
	)
	return true
}

// Cancel removes any outstanding job for the task. Cancelling a job that
// does not exist is a no-op.
func (s *Service) Cancel(ctx context.Context, taskID int64) bool {
	if err := s.jobs.Cancel(ctx, JobName(taskID)); err != nil {
		metrics.ReminderJobsTotal.WithLabelValues("cancel", "failed").Inc()
		s.logger.ErrorwCtx(ctx, "Failed to cancel reminder job",
			"task_id", taskID,
			"error", err,
		)
		return false
	}

	metrics.ReminderJobsTotal.WithLabelValues("cancel", "success").Inc()
	return true
}

func (s *Service) HandleCreated(ctx context.Context, data event.TaskCreatedData) {
	if data.ReminderAt == nil || data.TaskID == 0 || data.UserID == "" {
		return
	}
	s.Schedule(ctx, data.TaskID, data.UserID, data.Title, *data.ReminderAt)
}

// HandleUpdated reschedules when the change set touches the reminder field.
// The cancel always happens first, even when no job exists.
func (s *Service) HandleUpdated(ctx context.Context, data event.TaskUpdatedData) {
	change, ok := reminderChange(data.Changes)
	if !ok {
		return
	}

	s.Cancel(ctx, data.TaskID)

	newReminder, ok := asUnixSeconds(change.New)
	if !ok {
		return
	}

	title := s.tasks.FetchTaskTitle(ctx, data.TaskID, constants.DefaultTaskTitle)
	s.Schedule(ctx, data.TaskID, data.UserID, title, newReminder)
}

func (s *Service) HandleDeleted(ctx context.Context, data event.TaskDeletedData) {
	if data.TaskID == 0 {
		return
	}
	s.Cancel(ctx, data.TaskID)
}

func (s *Service) HandleCompleted(ctx context.Context, data event.TaskCompletedData) {
	if data.TaskID == 0 {
		return
	}
	s.Cancel(ctx, data.TaskID)
}

// HandleJobCallback fires when the substrate invokes a due job. The stored
// data re-enters the bus as a reminder.triggered event.
func (s *Service) HandleJobCallback(ctx context.Context, jobName string, data JobData) {
	s.logger.InfowCtx(ctx, "Reminder job fired",
		"job_name", jobName,
		"task_id", data.TaskID,
	)

	title := data.Title
	if title == "" {
		title = constants.DefaultTaskTitle
	}

	s.publisher.PublishReminderTriggered(ctx, event.ReminderTriggeredData{
		TaskID:      data.TaskID,
		UserID:      data.UserID,
		Title:       title,
		TriggeredAt: s.now().Unix(),
	})
}

// reminderChange finds the reminder field in a change set under either of
// the names upstream emits.
func reminderChange(changes map[string]event.FieldChange) (event.FieldChange, bool) {
	if change, ok := changes["reminder_at"]; ok {
		return change, true
	}
	if change, ok := changes["reminderAt"]; ok {
		return change, true
	}
	return event.FieldChange{}, false
}

// asUnixSeconds coerces a decoded JSON change value to a Unix timestamp. A
// nil or unusable value means the reminder was cleared.
func asUnixSeconds(v interface{}) (int64, bool) {
	switch value := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(value), true
	case int64:
		return value, true
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

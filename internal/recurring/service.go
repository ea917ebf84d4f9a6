package recurring

import (
	"context"
	"fmt"
	"time"

	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/internal/taskapi"
	"tasknotify/pkg/metrics"
)

const (
	RuleDaily   = "daily"
	RuleWeekly  = "weekly"
	RuleMonthly = "monthly"
)

const defaultPriority = "medium"

// Service reacts to completions of recurring tasks by creating the next
// occurrence through the task-management boundary.
type Service struct {
	tasks  *taskapi.Client
	logger logger.Logger

	now func() time.Time
}

func NewService(tasks *taskapi.Client, log logger.Logger) *Service {
	return &Service{
		tasks:  tasks,
		logger: log,
		now:    time.Now,
	}
}

// Advance computes the next occurrence from a base date. Daily and weekly
// rules add whole days; monthly adds calendar months, clamping the day to the
// target month's length (Jan 31 + 1 month is Feb 28 or 29).
func Advance(base time.Time, rule string, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}

	switch rule {
	case RuleDaily:
		return base.AddDate(0, 0, interval)
	case RuleWeekly:
		return base.AddDate(0, 0, 7*interval)
	case RuleMonthly:
		return addMonthsClamped(base, interval)
	default:
		return base.AddDate(0, 0, interval)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// HandleCompleted processes one task.completed payload. A recurrence whose
// next occurrence falls past the end date terminates silently; that is
// success, not an error.
func (s *Service) HandleCompleted(ctx context.Context, data event.TaskCompletedData) error {
	if !data.IsRecurring || data.Recurrence == nil || data.Recurrence.Rule == "" {
		return nil
	}

	task, err := s.tasks.FetchTask(ctx, data.TaskID)
	if err != nil {
		metrics.RecurringTasksCreatedTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to fetch completed task %d: %w", data.TaskID, err)
	}

	base := s.now().UTC()
	if task.DueDate != nil {
		base = *task.DueDate
	}

	nextDue := Advance(base, data.Recurrence.Rule, data.Recurrence.Interval)

	if end := recurrenceEnd(task, data.Recurrence); end != nil && nextDue.After(*end) {
		metrics.RecurringTasksCreatedTotal.WithLabelValues("ended").Inc()
		s.logger.InfowCtx(ctx, "Recurrence ended, no next occurrence",
			"task_id", data.TaskID,
			"end_date", end,
		)
		return nil
	}

	// An original reminder keeps the same offset from the due date.
	var nextReminder *time.Time
	if task.ReminderAt != nil && task.DueDate != nil {
		offset := task.DueDate.Sub(*task.ReminderAt)
		r := nextDue.Add(-offset)
		nextReminder = &r
	}

	priority := task.Priority
	if priority == "" {
		priority = defaultPriority
	}

	req := taskapi.CreateTaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Priority:    priority,
		DueDate:     &nextDue,
		ReminderAt:  nextReminder,
		Recurrence:  nextRecurrence(task, data.Recurrence),
		Tags:        task.Tags,
	}

	created, err := s.tasks.CreateTask(ctx, req, data.UserID)
	if err != nil {
		metrics.RecurringTasksCreatedTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to create next occurrence of task %d: %w", data.TaskID, err)
	}

	metrics.RecurringTasksCreatedTotal.WithLabelValues("created").Inc()
	s.logger.InfowCtx(ctx, "Created next recurring occurrence",
		"task_id", data.TaskID,
		"next_task_id", created.ID,
		"due", nextDue,
	)
	return nil
}

// recurrenceEnd prefers the boundary snapshot's end date; the event payload's
// descriptor is the fallback when the snapshot omits it.
func recurrenceEnd(task *taskapi.Task, descriptor *event.Recurrence) *time.Time {
	if task.Recurrence != nil && task.Recurrence.EndDate != nil {
		return task.Recurrence.EndDate
	}
	if descriptor.EndDate != nil {
		end := time.Unix(*descriptor.EndDate, 0).UTC()
		return &end
	}
	return nil
}

// nextRecurrence carries the same descriptor forward so the chain continues.
func nextRecurrence(task *taskapi.Task, descriptor *event.Recurrence) *taskapi.TaskRecurrence {
	next := &taskapi.TaskRecurrence{
		Rule:     descriptor.Rule,
		Interval: descriptor.Interval,
	}
	if end := recurrenceEnd(task, descriptor); end != nil {
		next.EndDate = end
	}
	return next
}

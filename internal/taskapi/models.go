package taskapi

import "time"

// Task is the snapshot shape the task-management boundary returns.
type Task struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Priority    string          `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
	ReminderAt  *time.Time      `json:"reminder_at"`
	Recurrence  *TaskRecurrence `json:"recurrence"`
	Tags        []string        `json:"tags"`
}

type TaskRecurrence struct {
	Rule     string     `json:"rule"`
	Interval int        `json:"interval"`
	EndDate  *time.Time `json:"end_date"`
}

type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Priority    string          `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	ReminderAt  *time.Time      `json:"reminder_at,omitempty"`
	Recurrence  *TaskRecurrence `json:"recurrence,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

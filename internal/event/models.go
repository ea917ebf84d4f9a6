package event

import (
	"encoding/json"
	"fmt"
)

const (
	TypeTaskCreated       = "task.created"
	TypeTaskUpdated       = "task.updated"
	TypeTaskCompleted     = "task.completed"
	TypeTaskDeleted       = "task.deleted"
	TypeReminderTriggered = "reminder.triggered"
)

const (
	SpecVersion     = "1.0"
	DataContentType = "application/json"
)

// Envelope is the canonical CloudEvents-style message unit. Once published it
// is immutable; retried publishes of the same logical event reuse the id.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	ID              string          `json:"id"`
	Time            string          `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// DecodeData unmarshals the payload into a type-specific struct.
func (e *Envelope) DecodeData(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope %s has no data", e.ID)
	}
	return json.Unmarshal(e.Data, v)
}

// UserID extracts data.userId without decoding the full payload. Returns an
// empty string when the field is absent.
func (e *Envelope) UserID() string {
	var probe struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(e.Data, &probe); err != nil {
		return ""
	}
	return probe.UserID
}

// TaskID extracts data.taskId. Returns zero when the field is absent.
func (e *Envelope) TaskID() int64 {
	var probe struct {
		TaskID int64 `json:"taskId"`
	}
	if err := json.Unmarshal(e.Data, &probe); err != nil {
		return 0
	}
	return probe.TaskID
}

// Recurrence describes how a task repeats.
type Recurrence struct {
	Rule     string `json:"rule"`
	Interval int    `json:"interval"`
	EndDate  *int64 `json:"endDate,omitempty"`
}

// FieldChange carries the old and new value of a changed task field.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// TaskCreatedData is the full attribute snapshot carried by task.created.
// Timestamps are Unix seconds.
type TaskCreatedData struct {
	TaskID       int64       `json:"taskId"`
	UserID       string      `json:"userId"`
	Title        string      `json:"title"`
	Description  *string     `json:"description"`
	Status       string      `json:"status"`
	Priority     string      `json:"priority"`
	DueDate      *int64      `json:"dueDate"`
	ReminderAt   *int64      `json:"reminderAt"`
	Recurrence   *Recurrence `json:"recurrence"`
	Tags         []string    `json:"tags"`
	ParentTaskID *int64      `json:"parentTaskId,omitempty"`
	CreatedAt    int64       `json:"createdAt"`
}

type TaskUpdatedData struct {
	TaskID    int64                  `json:"taskId"`
	UserID    string                 `json:"userId"`
	Changes   map[string]FieldChange `json:"changes"`
	UpdatedAt int64                  `json:"updatedAt"`
}

type TaskCompletedData struct {
	TaskID      int64       `json:"taskId"`
	UserID      string      `json:"userId"`
	IsRecurring bool        `json:"isRecurring"`
	Recurrence  *Recurrence `json:"recurrence"`
	CompletedAt int64       `json:"completedAt"`
}

type TaskDeletedData struct {
	TaskID    int64  `json:"taskId"`
	UserID    string `json:"userId"`
	DeletedAt int64  `json:"deletedAt"`
}

type ReminderTriggeredData struct {
	TaskID      int64  `json:"taskId"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	TriggeredAt int64  `json:"triggeredAt"`
}

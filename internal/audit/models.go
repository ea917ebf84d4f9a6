package audit

import "encoding/json"

// Entry is an immutable audit record derived 1:1 from a received envelope.
// Entries are created on first receipt and never mutated or deleted.
type Entry struct {
	ID        string          `json:"id"`
	TaskID    int64           `json:"taskId"`
	UserID    string          `json:"userId"`
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"createdAt"`
}

type Filter struct {
	TaskID    *int64
	EventType string
	Limit     int
}

type ListResponse struct {
	Items []Entry `json:"items"`
	Total int     `json:"total"`
}

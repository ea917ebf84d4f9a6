package constants

import "time"

const (
	// PublishTimeout bounds every substrate call except service
	// invocation, which proxies to the backend and gets InvokeTimeout.
	PublishTimeout = 5 * time.Second
	InvokeTimeout  = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

const (
	// CloseCodeInvalidToken is sent before closing a push channel whose
	// credential failed validation.
	CloseCodeInvalidToken = 4001
)

const (
	ReminderJobPrefix = "reminder-"
	AuditKeyPrefix    = "audit-"
	EventIDPrefix     = "evt-"
)

const (
	DefaultTaskTitle = "Task Reminder"
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

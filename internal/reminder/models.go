package reminder

// JobData is stored with a scheduled job and handed back verbatim when it
// fires.
type JobData struct {
	TaskID     int64  `json:"taskId"`
	UserID     string `json:"userId"`
	Title      string `json:"title"`
	ReminderAt int64  `json:"reminderAt"`
}

type jobCallbackBody struct {
	Data JobData `json:"data"`
}

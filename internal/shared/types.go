package shared

import "github.com/hibiken/asynq"

// Enqueuer is the slice of asynq.Client the services use, kept as an
// interface so tests can record enqueued tasks.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Asynq task type names.
const (
	TypeSendEntryNotification = "email:entry_created"
	TypeProcessPreview        = "attachment:process_preview"
	TypeRetryStalledPreviews  = "attachment:retry_stalled_previews"
)

// Asynq queue names.
const (
	QueueEmail      = "email"
	QueueAttachment = "attachment"
)

// EntryNotificationPayload is the task payload for entry-created emails.
type EntryNotificationPayload struct {
	EntryID    string   `json:"entryId"`
	Title      string   `json:"title"`
	LoggedBy   string   `json:"loggedBy"`
	Recipients []string `json:"recipients"`
}

// PreviewPayload is the task payload for attachment preview generation.
type PreviewPayload struct {
	AttachmentID string `json:"attachmentId"`
}

// RetryStalledPayload is the task payload for the periodic stalled-preview
// sweep.
type RetryStalledPayload struct {
	OlderThanMinutes int `json:"olderThanMinutes"`
}

// Person is a resolved notification recipient (from the directory
// collaborator, not a local user account).
type Person struct {
	DisplayName string `json:"displayName"`
	Mail        string `json:"mail"`
}

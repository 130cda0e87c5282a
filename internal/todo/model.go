package todo

import "time"

// Todo is a single tracked task. CompletedAt is non-nil exactly when
// Completed is true.
type Todo struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Notes            *string    `json:"notes"`
	DueDate          *string    `json:"due_date"`
	Completed        bool       `json:"completed"`
	NotifyOnComplete bool       `json:"notify_on_complete"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// CreateInput carries the user-submitted fields for a new task.
type CreateInput struct {
	Title            string
	Notes            string
	DueDate          string
	NotifyOnComplete bool
}

// Status filters task listings.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status query value, defaulting empty to "all".
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case "":
		return StatusAll, true
	case StatusAll, StatusActive, StatusCompleted:
		return Status(raw), true
	default:
		return "", false
	}
}

package todo

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTitleRequired = errors.New("title required")
	ErrNotFound      = errors.New("todo not found")
)

// Repository is the persistence surface for tasks.
type Repository interface {
	Create(ctx context.Context, input CreateInput) (Todo, error)
	List(ctx context.Context, status Status) ([]Todo, error)
	GetByID(ctx context.Context, id int64) (Todo, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (Todo, error)
	UpdateDetails(ctx context.Context, id int64, title, notes string) (Todo, error)
	Delete(ctx context.Context, id int64) error

	// CompletedInRange returns completed tasks whose completion time lies
	// in the half-open interval [start, end), ordered by completion time
	// ascending.
	CompletedInRange(ctx context.Context, start, end time.Time) ([]Todo, error)
}

// SettingsStore holds the single mutable notification recipient. An empty
// string means no recipient is configured.
type SettingsStore interface {
	EmailRecipient(ctx context.Context) (string, error)
	SetEmailRecipient(ctx context.Context, email string) error
}

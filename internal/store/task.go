package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskPredicate selects tasks of one owner. Zero-valued optional fields are
// ignored; the rest are ANDed together.
type TaskPredicate struct {
	// UserID is mandatory; every query is scoped to a single owner.
	UserID uuid.UUID

	// Status matches exactly.
	Status *domain.TaskStatus

	// ExcludeStatus excludes tasks in that status.
	ExcludeStatus *domain.TaskStatus

	// DueFrom is an inclusive lower bound on due_date.
	DueFrom *time.Time

	// DueBefore is an exclusive upper bound on due_date.
	DueBefore *time.Time

	// Search is a case-insensitive substring matched against the title or
	// the description. It must already be trimmed; empty means no filter.
	Search string
}

// TaskQuery is a predicate plus a page window. Results are ordered newest
// first (created_at DESC, id DESC).
type TaskQuery struct {
	TaskPredicate
	Limit  int
	Offset int
}

// TaskStore persists tasks. Single-task operations take both the task id
// and the owner id so ownership is enforced in the same predicate as
// existence.
type TaskStore interface {
	// Create inserts a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound unless a task with id is owned by userID.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate is GetByID with a row lock held until the surrounding
	// transaction ends. Only meaningful on a store bound with WithTx.
	GetByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// List returns the page of tasks matching q.
	List(ctx context.Context, q TaskQuery) ([]*domain.Task, error)

	// Count returns the number of tasks matching p.
	Count(ctx context.Context, p TaskPredicate) (int, error)

	// Update overwrites the mutable fields of the task owned by task.UserID.
	// Returns ErrTaskNotFound if no row matched.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task. Returns ErrTaskNotFound if no row matched.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}

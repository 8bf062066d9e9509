package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// UserStore persists accounts. Emails are stored normalized; lookups by
// email expect an already normalized address.
type UserStore interface {
	// Create inserts a new account.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if no account has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns ErrUserNotFound if no account has the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update overwrites the mutable fields of an existing account, including
	// HashedPassword and Active.
	// Returns ErrUserNotFound if the account does not exist.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}

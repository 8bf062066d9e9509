package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/tasks-api/internal/worker"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	// Hash returns a salted hash of password.
	Hash(ctx context.Context, password string) (string, error)

	// Verify reports whether password matches hash. A mismatch is
	// (false, nil); a hash that cannot be parsed is an error.
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// JobRunner executes jobs, typically on a bounded worker pool.
type JobRunner interface {
	Submit(ctx context.Context, job worker.Job) error
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost   int
	runner JobRunner
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher using the given bcrypt cost. When runner
// is nil, hashing runs on the calling goroutine.
func NewBcryptHasher(cost int, runner JobRunner) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost, runner: runner}, nil
}

// Cost returns the configured bcrypt cost.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash implements PasswordHasher.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	var hashed []byte
	err := h.run(ctx, func(context.Context) error {
		var err error
		hashed, err = bcrypt.GenerateFromPassword([]byte(password), h.cost)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify implements PasswordHasher.
func (h *BcryptHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	var compareErr error
	err := h.run(ctx, func(context.Context) error {
		compareErr = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}

	switch {
	case compareErr == nil:
		return true, nil
	case errors.Is(compareErr, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, compareErr)
	}
}

func (h *BcryptHasher) run(ctx context.Context, job worker.Job) error {
	if h.runner == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		return job(ctx)
	}
	return h.runner.Submit(ctx, job)
}

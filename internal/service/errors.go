package service

import (
	"errors"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Client-facing messages.
const (
	msgInvalidCredentials   = "Invalid credentials"
	msgEmailTaken           = "Email is already registered"
	msgUserNotFound         = "User not found"
	msgTaskNotFound         = "Task not found"
	msgTaskAlreadyCompleted = "Task is already completed"
	msgCurrentPasswordWrong = "Current password is incorrect"
	msgPasswordUnchanged    = "New password must be different from the current password"
)

// translateUserErr maps a store failure on an account lookup or write.
func translateUserErr(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NewError(domain.ErrNotFound, msgUserNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return domain.NewError(domain.ErrConflict, msgEmailTaken, err)
	case errors.Is(err, store.ErrInvalidEntity):
		return domain.NewError(domain.ErrValidation, "Invalid account data", err)
	default:
		return domain.Internal("failed to "+op, err)
	}
}

// translateTaskErr maps a store failure on a task lookup or write.
func translateTaskErr(err error, op string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NewError(domain.ErrNotFound, msgTaskNotFound, err)
	case errors.Is(err, store.ErrInvalidEntity):
		return domain.NewError(domain.ErrValidation, "Invalid task data", err)
	default:
		return domain.Internal("failed to "+op, err)
	}
}

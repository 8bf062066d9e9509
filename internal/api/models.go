package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User *domain.User `json:"user,omitempty"`

	// AccessToken is the JWT used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest optionally names a refresh token to revoke alongside the
// access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest defines the payload for changing the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=200"`
	Description string  `json:"description" validate:"max=1000"`
	Status      string  `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	DueDate     DueDate `json:"due_date"`
}

// UpdateTaskRequest defines the payload for a partial task update. Absent
// fields are left unchanged; "due_date": null removes the due date.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	DueDate     DueDate `json:"due_date"`
}

// DueDate is an optional, nullable due date in a request body. It accepts
// YYYY-MM-DD or an RFC 3339 timestamp.
type DueDate struct {
	// Present reports whether the field appeared in the body at all.
	Present bool
	// Time is nil when the field was absent or null.
	Time *time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Time = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Invalid(domain.ErrInvalidDueDate)
	}
	t, _, err := domain.ParseDueDate(s)
	if err != nil {
		return domain.Invalid(err)
	}
	d.Time = &t
	return nil
}

// IsNull reports whether the field was given as an explicit null.
func (d DueDate) IsNull() bool {
	return d.Present && d.Time == nil
}

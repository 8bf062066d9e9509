package domain

import (
	"errors"
)

// Failure kinds. Every error returned by a service unwraps to exactly one of
// these so callers can branch with errors.Is.
var (
	// ErrValidation marks malformed or out-of-range input (bad request).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing resource, including one owned by someone else.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation such as a taken email.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized marks failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal marks unexpected failures; details stay in logs.
	ErrInternal = errors.New("internal error")
)

// Error is a typed failure. Message is safe to show to clients; Err keeps the
// underlying cause for diagnostics.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewError builds an Error of the given kind.
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Invalid wraps a validation error, using its text as the client message.
func Invalid(err error) *Error {
	return &Error{Kind: ErrValidation, Message: err.Error(), Err: err}
}

// BadRequest returns a validation failure with the given message.
func BadRequest(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// NotFound returns a not-found failure with the given message.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Conflict returns a conflict failure with the given message.
func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Unauthorized returns an authentication failure with the given message.
func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// Internal returns an internal failure that retains cause for logging.
func Internal(message string, cause error) *Error {
	return &Error{Kind: ErrInternal, Message: message, Err: cause}
}

// KindOf reports the failure kind of err. Errors that carry no kind are
// treated as internal.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnauthorized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// SafeMessage returns the client-facing message carried by err, or an empty
// string when err carries none or is internal.
func SafeMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != ErrInternal {
		return de.Message
	}
	return ""
}

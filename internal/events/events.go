package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	AccountRegistered      = "account.registered"
	AccountPasswordChanged = "account.password_changed"
	TaskCompleted          = "task.completed"
	TaskDeleted            = "task.deleted"
)

// Event describes something that happened to an account or one of its tasks.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants
	Type string `json:"type"`

	// UserID is the account the event belongs to
	UserID uuid.UUID `json:"user_id"`

	// Attributes carries event-specific details, e.g. the task ID.
	// Values must not contain credentials.
	Attributes map[string]string `json:"attributes,omitempty"`

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates an Event of the given type for userID.
func NewEvent(eventType string, userID uuid.UUID, attrs map[string]string) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

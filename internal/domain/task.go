package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// Task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority ranks a task.
type TaskPriority string

// Task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Field limits for Task.
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 1000
)

// Validation errors for Task.
var (
	ErrEmptyTaskID            = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID        = errors.New("task user ID cannot be empty")
	ErrEmptyTaskTitle         = errors.New("title is required")
	ErrTaskTitleTooLong       = fmt.Errorf("title must be at most %d characters long", MaxTaskTitleLength)
	ErrTaskDescriptionTooLong = fmt.Errorf("description must be at most %d characters long", MaxTaskDescriptionLength)
	ErrInvalidTaskStatus      = errors.New("status must be one of: pending, in_progress, completed")
	ErrInvalidTaskPriority    = errors.New("priority must be one of: low, medium, high, urgent")
	ErrInvalidDueDate         = errors.New("due date must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	ErrTaskAlreadyCompleted   = errors.New("task is already completed")
	ErrEmptyTaskPatch         = errors.New("at least one field must be provided")
	ErrInvalidSearch          = errors.New("search must be valid UTF-8 text")
)

var taskStatuses = map[TaskStatus]struct{}{
	TaskStatusPending:    {},
	TaskStatusInProgress: {},
	TaskStatusCompleted:  {},
}

var taskPriorities = map[TaskPriority]struct{}{
	TaskPriorityLow:    {},
	TaskPriorityMedium: {},
	TaskPriorityHigh:   {},
	TaskPriorityUrgent: {},
}

// ParseTaskStatus converts s into a TaskStatus. Matching is exact.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", ErrInvalidTaskStatus
	}
	return status, nil
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	_, ok := taskStatuses[s]
	return ok
}

// ParseTaskPriority converts s into a TaskPriority. Matching is exact.
func ParseTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(s)
	if !priority.Valid() {
		return "", ErrInvalidTaskPriority
	}
	return priority, nil
}

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	_, ok := taskPriorities[p]
	return ok
}

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a Task for userID. Empty status and priority default to
// pending and medium. A task created as completed gets CompletedAt = now.
func NewTask(
	userID uuid.UUID,
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	dueDate *time.Time,
	now time.Time,
) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now = now.UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     utcPtr(dueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == TaskStatusCompleted {
		task.CompletedAt = &now
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	return nil
}

// Complete moves the task into the completed state. It fails with
// ErrTaskAlreadyCompleted, leaving CompletedAt untouched, when the task is
// already completed.
func (t *Task) Complete(now time.Time) error {
	if t.Status == TaskStatusCompleted {
		return ErrTaskAlreadyCompleted
	}
	t.setStatus(TaskStatusCompleted, now)
	t.touch(now)
	return nil
}

// IsOverdue reports whether the task is past due and not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// Apply copies the fields present in p onto the task and bumps UpdatedAt.
// p must already be validated.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = utcPtr(p.DueDate)
	}
	if p.Status != nil {
		t.setStatus(*p.Status, now)
	}
	t.touch(now)
}

// setStatus stamps CompletedAt on each transition into completed. Leaving
// completed keeps the last stamp.
func (t *Task) setStatus(status TaskStatus, now time.Time) {
	if status == TaskStatusCompleted && t.Status != TaskStatusCompleted {
		completedAt := now.UTC()
		t.CompletedAt = &completedAt
	}
	t.Status = status
}

// touch moves UpdatedAt strictly forward, even when the clock has not
// advanced past the stored value at database precision.
func (t *Task) touch(now time.Time) {
	now = now.UTC()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = now
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *TaskStatus
	Priority     *TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && !p.ClearDueDate
}

// Validate checks every field present in the patch.
func (p TaskPatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyTaskPatch
	}
	if p.Title != nil {
		if err := validateTitle(strings.TrimSpace(*p.Title)); err != nil {
			return err
		}
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTaskTitle
	}
	if utf8.RuneCountInString(title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}
	return nil
}

// ValidateSearch rejects search text the database cannot compare.
func ValidateSearch(search string) error {
	if !utf8.ValidString(search) || strings.ContainsRune(search, 0) {
		return ErrInvalidSearch
	}
	return nil
}

// ParseDueDate accepts either an RFC 3339 timestamp or a YYYY-MM-DD date
// (interpreted as midnight UTC). The boolean reports the date-only form.
func ParseDueDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, ErrInvalidDueDate
}

// DueDateWindow returns the half-open range [start, start+24h) used when
// filtering tasks by due date.
func DueDateWindow(s string) (time.Time, time.Time, error) {
	start, _, err := ParseDueDate(s)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(24 * time.Hour), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

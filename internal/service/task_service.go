package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// CreateTaskInput carries the fields of a new task. Empty Status and
// Priority take their defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
// ClearDueDate removes the due date.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
}

// ListTasksInput holds the raw listing filters. Empty strings and nil
// pointers mean "not given".
type ListTasksInput struct {
	Status  string
	DueDate string
	Search  string
	Page    *int
	Limit   *int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items      []*domain.Task `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// TaskStats summarizes the tasks of one owner.
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// TaskService queries and mutates the tasks of a single owner. Every
// operation is scoped to userID; tasks of other owners behave as missing.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, userID uuid.UUID, in ListTasksInput) (*TaskPage, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, in UpdateTaskInput) (*domain.Task, error)
	MarkComplete(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*TaskStats, error)
}

type taskService struct {
	tasks   store.TaskStore
	db      store.TxBeginner
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
}

var _ TaskService = (*taskService)(nil)

// NewTaskService creates a TaskService. db opens the transactions used by
// Update and MarkComplete.
func NewTaskService(
	tasks store.TaskStore,
	db store.TxBeginner,
	emitter events.EventEmitter,
	log *slog.Logger,
) TaskService {
	if tasks == nil || db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("tasks and db are required")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &taskService{
		tasks:   tasks,
		db:      db,
		emitter: emitter,
		logger:  log.With("component", "task_service"),
		now:     time.Now,
	}
}

func (s *taskService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Create implements TaskService.
func (s *taskService) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*domain.Task, error) {
	var status domain.TaskStatus
	if in.Status != "" {
		parsed, err := domain.ParseTaskStatus(in.Status)
		if err != nil {
			return nil, domain.Invalid(err)
		}
		status = parsed
	}
	var priority domain.TaskPriority
	if in.Priority != "" {
		parsed, err := domain.ParseTaskPriority(in.Priority)
		if err != nil {
			return nil, domain.Invalid(err)
		}
		priority = parsed
	}

	task, err := domain.NewTask(userID, in.Title, in.Description, status, priority, in.DueDate, s.now())
	if err != nil {
		return nil, domain.Invalid(err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.log(ctx).Error("failed to create task", "error", err, "user_id", userID)
		return nil, translateTaskErr(err, "create task")
	}

	s.log(ctx).Debug("task created", "task_id", task.ID, "user_id", userID)
	return task, nil
}

// List implements TaskService.
func (s *taskService) List(ctx context.Context, userID uuid.UUID, in ListTasksInput) (*TaskPage, error) {
	page, err := domain.NewPagination(in.Page, in.Limit)
	if err != nil {
		return nil, domain.Invalid(err)
	}

	search := strings.TrimSpace(in.Search)
	if err := domain.ValidateSearch(search); err != nil {
		return nil, domain.Invalid(err)
	}

	pred := store.TaskPredicate{
		UserID: userID,
		Search: search,
	}
	if in.Status != "" {
		status, err := domain.ParseTaskStatus(in.Status)
		if err != nil {
			return nil, domain.Invalid(err)
		}
		pred.Status = &status
	}
	if in.DueDate != "" {
		from, to, err := domain.DueDateWindow(in.DueDate)
		if err != nil {
			return nil, domain.Invalid(err)
		}
		pred.DueFrom, pred.DueBefore = &from, &to
	}

	total, err := s.tasks.Count(ctx, pred)
	if err != nil {
		s.log(ctx).Error("failed to count tasks", "error", err, "user_id", userID)
		return nil, translateTaskErr(err, "count tasks")
	}

	items := []*domain.Task{}
	if total > page.Offset() {
		items, err = s.tasks.List(ctx, store.TaskQuery{
			TaskPredicate: pred,
			Limit:         page.Limit,
			Offset:        page.Offset(),
		})
		if err != nil {
			s.log(ctx).Error("failed to list tasks", "error", err, "user_id", userID)
			return nil, translateTaskErr(err, "list tasks")
		}
		if items == nil {
			items = []*domain.Task{}
		}
	}

	return &TaskPage{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}

// Get implements TaskService.
func (s *taskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to load task", "error", err, "task_id", taskID)
		}
		return nil, translateTaskErr(err, "load task")
	}
	return task, nil
}

// Update implements TaskService.
func (s *taskService) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	in UpdateTaskInput,
) (*domain.Task, error) {
	patch, err := buildPatch(in)
	if err != nil {
		return nil, domain.Invalid(err)
	}
	if err := patch.Validate(); err != nil {
		return nil, domain.Invalid(err)
	}

	var updated *domain.Task
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByIDForUpdate(ctx, taskID, userID)
		if err != nil {
			return err
		}

		task.Apply(patch, s.now())
		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to update task", "error", err, "task_id", taskID)
		}
		return nil, translateTaskErr(err, "update task")
	}

	s.log(ctx).Debug("task updated", "task_id", taskID, "user_id", userID)
	return updated, nil
}

func buildPatch(in UpdateTaskInput) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:        in.Title,
		Description:  in.Description,
		DueDate:      in.DueDate,
		ClearDueDate: in.ClearDueDate,
	}
	if in.Status != nil {
		status, err := domain.ParseTaskStatus(*in.Status)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Status = &status
	}
	if in.Priority != nil {
		priority, err := domain.ParseTaskPriority(*in.Priority)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Priority = &priority
	}
	return patch, nil
}

// MarkComplete implements TaskService.
func (s *taskService) MarkComplete(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	var completed *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByIDForUpdate(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := task.Complete(s.now()); err != nil {
			if errors.Is(err, domain.ErrTaskAlreadyCompleted) {
				return domain.NewError(domain.ErrValidation, msgTaskAlreadyCompleted, err)
			}
			return err
		}
		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}
		completed = task
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == domain.ErrInternal && !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to complete task", "error", err, "task_id", taskID)
		}
		return nil, translateTaskErr(err, "complete task")
	}

	s.log(ctx).Debug("task completed", "task_id", taskID, "user_id", userID)
	s.emit(ctx, events.NewEvent(events.TaskCompleted, userID, map[string]string{
		"task_id": taskID.String(),
	}))
	return completed, nil
}

// Delete implements TaskService.
func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, taskID, userID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to delete task", "error", err, "task_id", taskID)
		}
		return translateTaskErr(err, "delete task")
	}

	s.log(ctx).Debug("task deleted", "task_id", taskID, "user_id", userID)
	s.emit(ctx, events.NewEvent(events.TaskDeleted, userID, map[string]string{
		"task_id": taskID.String(),
	}))
	return nil
}

// Stats implements TaskService. The five counts run concurrently and each
// sees the data committed when its own statement starts.
func (s *taskService) Stats(ctx context.Context, userID uuid.UUID) (*TaskStats, error) {
	now := s.now().UTC()
	pending := domain.TaskStatusPending
	inProgress := domain.TaskStatusInProgress
	completed := domain.TaskStatusCompleted

	var stats TaskStats
	counts := []struct {
		dst  *int
		pred store.TaskPredicate
	}{
		{&stats.Total, store.TaskPredicate{UserID: userID}},
		{&stats.Pending, store.TaskPredicate{UserID: userID, Status: &pending}},
		{&stats.InProgress, store.TaskPredicate{UserID: userID, Status: &inProgress}},
		{&stats.Completed, store.TaskPredicate{UserID: userID, Status: &completed}},
		{&stats.Overdue, store.TaskPredicate{UserID: userID, ExcludeStatus: &completed, DueBefore: &now}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.tasks.Count(gctx, c.pred)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log(ctx).Error("failed to compute task stats", "error", err, "user_id", userID)
		return nil, translateTaskErr(err, "compute task stats")
	}

	return &stats, nil
}

// emit publishes a diagnostic event. Failures are logged, never returned.
func (s *taskService) emit(ctx context.Context, event *events.Event) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.log(ctx).Warn("failed to emit event", "error", err, "event_type", event.Type)
	}
}

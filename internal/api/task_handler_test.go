package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTask(userID uuid.UUID) *domain.Task {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Write report",
		Status:    domain.TaskStatusPending,
		Priority:  domain.TaskPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateTask(t *testing.T) {
	t.Run("created with date-only due date", func(t *testing.T) {
		ts := newTestServer(t)
		userID := uuid.New()
		ts.tasks.CreateFn = func(_ context.Context, owner uuid.UUID, in service.CreateTaskInput) (*domain.Task, error) {
			assert.Equal(t, userID, owner)
			assert.Equal(t, "Write report", in.Title)
			assert.Equal(t, "high", in.Priority)
			require.NotNil(t, in.DueDate)
			assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), *in.DueDate)
			task := testTask(owner)
			task.DueDate = in.DueDate
			return task, nil
		}

		rec := ts.do(http.MethodPost, "/api/tasks", ts.accessToken(t, userID),
			`{"title":"Write report","priority":"high","due_date":"2026-03-20"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var task domain.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
		assert.Equal(t, userID, task.UserID)
	})

	t.Run("request validation", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			wantMsg string
		}{
			{"missing title", `{"description":"x"}`, "Invalid title: required field"},
			{"unknown status", `{"title":"a","status":"done"}`,
				"Invalid status: must be one of pending, in_progress, completed"},
			{"bad due date", `{"title":"a","due_date":"next week"}`, domain.ErrInvalidDueDate.Error()},
			{"trailing data", `{"title":"a"}{"title":"b"}`, "Invalid request format"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ts := newTestServer(t)
				rec := ts.do(http.MethodPost, "/api/tasks", ts.accessToken(t, uuid.New()), tt.body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, tt.wantMsg, errorMessage(t, rec.Body.Bytes()))
			})
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(http.MethodPost, "/api/tasks", "", `{"title":"a"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListTasks(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		ts := newTestServer(t)
		userID := uuid.New()
		ts.tasks.ListFn = func(_ context.Context, owner uuid.UUID, in service.ListTasksInput) (*service.TaskPage, error) {
			assert.Equal(t, userID, owner)
			assert.Equal(t, "pending", in.Status)
			assert.Equal(t, "2026-03-20", in.DueDate)
			assert.Equal(t, "report", in.Search)
			require.NotNil(t, in.Page)
			require.NotNil(t, in.Limit)
			assert.Equal(t, 2, *in.Page)
			assert.Equal(t, 5, *in.Limit)
			return &service.TaskPage{Items: []*domain.Task{}, Total: 6, Page: 2, Limit: 5, TotalPages: 2}, nil
		}

		rec := ts.do(http.MethodGet,
			"/api/tasks?status=pending&dueDate=2026-03-20&search=report&page=2&limit=5",
			ts.accessToken(t, userID), "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[],"total":6,"page":2,"limit":5,"total_pages":2}`, rec.Body.String())
	})

	t.Run("snake case due date and defaults", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.ListFn = func(_ context.Context, _ uuid.UUID, in service.ListTasksInput) (*service.TaskPage, error) {
			assert.Equal(t, "2026-03-20", in.DueDate)
			assert.Nil(t, in.Page)
			assert.Nil(t, in.Limit)
			return &service.TaskPage{Items: []*domain.Task{}, Page: 1, Limit: 10}, nil
		}

		rec := ts.do(http.MethodGet, "/api/tasks?due_date=2026-03-20", ts.accessToken(t, uuid.New()), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-numeric page", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(http.MethodGet, "/api/tasks?page=two", ts.accessToken(t, uuid.New()), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "page must be an integer", errorMessage(t, rec.Body.Bytes()))
	})

	t.Run("service validation error", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.ListFn = func(context.Context, uuid.UUID, service.ListTasksInput) (*service.TaskPage, error) {
			return nil, domain.Invalid(domain.ErrInvalidLimit)
		}
		rec := ts.do(http.MethodGet, "/api/tasks?limit=1000", ts.accessToken(t, uuid.New()), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.ErrInvalidLimit.Error(), errorMessage(t, rec.Body.Bytes()))
	})
}

func TestGetTask(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ts := newTestServer(t)
		userID := uuid.New()
		task := testTask(userID)
		ts.tasks.GetFn = func(_ context.Context, owner, id uuid.UUID) (*domain.Task, error) {
			assert.Equal(t, userID, owner)
			assert.Equal(t, task.ID, id)
			return task, nil
		}

		rec := ts.do(http.MethodGet, "/api/tasks/"+task.ID.String(), ts.accessToken(t, userID), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(http.MethodGet, "/api/tasks/not-a-uuid", ts.accessToken(t, uuid.New()), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid task ID", errorMessage(t, rec.Body.Bytes()))
	})

	t.Run("other owner's task is not found", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.GetFn = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
			return nil, domain.NotFound("Task not found")
		}
		rec := ts.do(http.MethodGet, "/api/tasks/"+uuid.NewString(), ts.accessToken(t, uuid.New()), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", errorMessage(t, rec.Body.Bytes()))
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		ts := newTestServer(t)
		userID := uuid.New()
		task := testTask(userID)
		ts.tasks.UpdateFn = func(_ context.Context, _, _ uuid.UUID, in service.UpdateTaskInput) (*domain.Task, error) {
			require.NotNil(t, in.Status)
			assert.Equal(t, "in_progress", *in.Status)
			assert.Nil(t, in.Title)
			assert.Nil(t, in.DueDate)
			assert.False(t, in.ClearDueDate)
			task.Status = domain.TaskStatusInProgress
			return task, nil
		}

		rec := ts.do(http.MethodPatch, "/api/tasks/"+task.ID.String(), ts.accessToken(t, userID),
			`{"status":"in_progress"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"in_progress"`)
	})

	t.Run("null due date clears it", func(t *testing.T) {
		ts := newTestServer(t)
		userID := uuid.New()
		ts.tasks.UpdateFn = func(_ context.Context, _, _ uuid.UUID, in service.UpdateTaskInput) (*domain.Task, error) {
			assert.True(t, in.ClearDueDate)
			assert.Nil(t, in.DueDate)
			return testTask(userID), nil
		}

		rec := ts.do(http.MethodPatch, "/api/tasks/"+uuid.NewString(), ts.accessToken(t, userID),
			`{"due_date":null}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty patch", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.UpdateFn = func(context.Context, uuid.UUID, uuid.UUID, service.UpdateTaskInput) (*domain.Task, error) {
			return nil, domain.Invalid(domain.ErrEmptyTaskPatch)
		}
		rec := ts.do(http.MethodPatch, "/api/tasks/"+uuid.NewString(), ts.accessToken(t, uuid.New()), `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.ErrEmptyTaskPatch.Error(), errorMessage(t, rec.Body.Bytes()))
	})
}

func TestCompleteTask(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		ts := newTestServer(t)
		userID := uuid.New()
		task := testTask(userID)
		ts.tasks.MarkCompleteFn = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
			now := time.Now().UTC()
			task.Status = domain.TaskStatusCompleted
			task.CompletedAt = &now
			return task, nil
		}

		rec := ts.do(http.MethodPatch, "/api/tasks/"+task.ID.String()+"/complete", ts.accessToken(t, userID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"completed_at"`)
	})

	t.Run("already completed", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.MarkCompleteFn = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
			return nil, domain.NewError(domain.ErrValidation, "Task is already completed", domain.ErrTaskAlreadyCompleted)
		}
		rec := ts.do(http.MethodPatch, "/api/tasks/"+uuid.NewString()+"/complete", ts.accessToken(t, uuid.New()), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Task is already completed", errorMessage(t, rec.Body.Bytes()))
	})
}

func TestDeleteTask(t *testing.T) {
	ts := newTestServer(t)
	userID := uuid.New()
	taskID := uuid.New()
	ts.tasks.DeleteFn = func(_ context.Context, owner, id uuid.UUID) error {
		if owner == userID && id == taskID {
			return nil
		}
		return domain.NotFound("Task not found")
	}

	rec := ts.do(http.MethodDelete, "/api/tasks/"+taskID.String(), ts.accessToken(t, userID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = ts.do(http.MethodDelete, "/api/tasks/"+taskID.String(), ts.accessToken(t, uuid.New()), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStats(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.StatsFn = func(context.Context, uuid.UUID) (*service.TaskStats, error) {
			return &service.TaskStats{Total: 5, Pending: 2, InProgress: 1, Completed: 2, Overdue: 1}, nil
		}

		rec := ts.do(http.MethodGet, "/api/tasks/stats", ts.accessToken(t, uuid.New()), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"total":5,"pending":2,"in_progress":1,"completed":2,"overdue":1}`, rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.tasks.StatsFn = func(context.Context, uuid.UUID) (*service.TaskStats, error) {
			return nil, domain.Internal("count tasks", errors.New("timeout"))
		}

		rec := ts.do(http.MethodGet, "/api/tasks/stats", ts.accessToken(t, uuid.New()), "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to compute task statistics", errorMessage(t, rec.Body.Bytes()))
	})
}

func TestUserHandler(t *testing.T) {
	t.Run("me", func(t *testing.T) {
		ts := newTestServer(t)
		user := testUser()
		ts.accounts.GetAccountFn = func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			assert.Equal(t, user.ID, id)
			return user, nil
		}

		rec := ts.do(http.MethodGet, "/api/users/me", ts.accessToken(t, user.ID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
		assert.NotContains(t, rec.Body.String(), "hash")
	})

	t.Run("change password", func(t *testing.T) {
		ts := newTestServer(t)
		userID := uuid.New()
		ts.accounts.ChangePasswordFn = func(_ context.Context, id uuid.UUID, current, next string) (bool, error) {
			assert.Equal(t, userID, id)
			assert.Equal(t, "old-password", current)
			assert.Equal(t, "new-password", next)
			return true, nil
		}

		rec := ts.do(http.MethodPut, "/api/users/me/password", ts.accessToken(t, userID),
			`{"current_password":"old-password","new_password":"new-password"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("wrong current password", func(t *testing.T) {
		ts := newTestServer(t)
		ts.accounts.ChangePasswordFn = func(context.Context, uuid.UUID, string, string) (bool, error) {
			return false, domain.BadRequest("Current password is incorrect")
		}

		rec := ts.do(http.MethodPut, "/api/users/me/password", ts.accessToken(t, uuid.New()),
			`{"current_password":"nope","new_password":"new-password"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Current password is incorrect", errorMessage(t, rec.Body.Bytes()))
	})
}

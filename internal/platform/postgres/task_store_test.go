package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskColumnNames = []string{
	"id", "user_id", "title", "description", "status", "priority",
	"due_date", "completed_at", "created_at", "updated_at",
}

func newTaskStoreWithMock(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresTaskStore(db, discardLogger), mock
}

func testTask(t *testing.T, userID uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(userID, "Write tests", "cover the store", "", domain.TaskPriorityHigh, nil,
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	return task
}

func addTaskRow(rows *sqlmock.Rows, task *domain.Task) *sqlmock.Rows {
	var due, completed any
	if task.DueDate != nil {
		due = *task.DueDate
	}
	if task.CompletedAt != nil {
		completed = *task.CompletedAt
	}
	return rows.AddRow(task.ID.String(), task.UserID.String(), task.Title, task.Description,
		string(task.Status), string(task.Priority), due, completed, task.CreatedAt, task.UpdatedAt)
}

func TestBuildTaskWhere(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	completed := domain.TaskStatusCompleted
	pending := domain.TaskStatusPending
	from := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	before := from.Add(24 * time.Hour)

	tests := []struct {
		name     string
		pred     store.TaskPredicate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "owner only",
			pred:     store.TaskPredicate{UserID: userID},
			wantSQL:  "user_id = $1",
			wantArgs: []any{userID},
		},
		{
			name:     "status",
			pred:     store.TaskPredicate{UserID: userID, Status: &pending},
			wantSQL:  "user_id = $1 AND status = $2",
			wantArgs: []any{userID, "pending"},
		},
		{
			name:     "overdue shape",
			pred:     store.TaskPredicate{UserID: userID, ExcludeStatus: &completed, DueBefore: &before},
			wantSQL:  "user_id = $1 AND status <> $2 AND due_date < $3",
			wantArgs: []any{userID, "completed", before},
		},
		{
			name:     "due window",
			pred:     store.TaskPredicate{UserID: userID, DueFrom: &from, DueBefore: &before},
			wantSQL:  "user_id = $1 AND due_date >= $2 AND due_date < $3",
			wantArgs: []any{userID, from, before},
		},
		{
			name:     "search reuses one placeholder",
			pred:     store.TaskPredicate{UserID: userID, Search: "report"},
			wantSQL:  "user_id = $1 AND (title ILIKE $2 OR description ILIKE $2)",
			wantArgs: []any{userID, "%report%"},
		},
		{
			name: "everything",
			pred: store.TaskPredicate{
				UserID: userID, Status: &pending, DueFrom: &from, DueBefore: &before, Search: "50%_off",
			},
			wantSQL:  "user_id = $1 AND status = $2 AND due_date >= $3 AND due_date < $4 AND (title ILIKE $5 OR description ILIKE $5)",
			wantArgs: []any{userID, "pending", from, before, `%50\%\_off%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := buildTaskWhere(tt.pred)
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}

func TestPostgresTaskStore_Create(t *testing.T) {
	s, mock := newTaskStoreWithMock(t)
	task := testTask(t, uuid.New())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs(task.ID, task.UserID, task.Title, task.Description, "pending", "high",
			nil, nil, task.CreatedAt, task.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	t.Run("owner scoped single predicate", func(t *testing.T) {
		s, mock := newTaskStoreWithMock(t)
		task := testTask(t, uuid.New())
		due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		task.DueDate = &due

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 AND user_id = $2")).
			WithArgs(task.ID, task.UserID).
			WillReturnRows(addTaskRow(sqlmock.NewRows(taskColumnNames), task))

		got, err := s.GetByID(context.Background(), task.ID, task.UserID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, domain.TaskStatusPending, got.Status)
		assert.Equal(t, domain.TaskPriorityHigh, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("other owner is not found", func(t *testing.T) {
		s, mock := newTaskStoreWithMock(t)
		id, stranger := uuid.New(), uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 AND user_id = $2")).
			WithArgs(id, stranger).
			WillReturnRows(sqlmock.NewRows(taskColumnNames))

		_, err := s.GetByID(context.Background(), id, stranger)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_GetByIDForUpdate(t *testing.T) {
	s, mock := newTaskStoreWithMock(t)
	task := testTask(t, uuid.New())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND user_id = $2 FOR UPDATE")).
		WithArgs(task.ID, task.UserID).
		WillReturnRows(addTaskRow(sqlmock.NewRows(taskColumnNames), task))

	_, err := s.GetByIDForUpdate(context.Background(), task.ID, task.UserID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_List(t *testing.T) {
	s, mock := newTaskStoreWithMock(t)
	userID := uuid.New()
	first, second := testTask(t, userID), testTask(t, userID)
	status := domain.TaskStatusPending

	rows := sqlmock.NewRows(taskColumnNames)
	addTaskRow(rows, first)
	addTaskRow(rows, second)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4",
	)).
		WithArgs(userID, "pending", 10, 20).
		WillReturnRows(rows)

	got, err := s.List(context.Background(), store.TaskQuery{
		TaskPredicate: store.TaskPredicate{UserID: userID, Status: &status},
		Limit:         10,
		Offset:        20,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_ListEmpty(t *testing.T) {
	s, mock := newTaskStoreWithMock(t)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE user_id = $1 ORDER BY")).
		WithArgs(userID, 10, 0).
		WillReturnRows(sqlmock.NewRows(taskColumnNames))

	got, err := s.List(context.Background(), store.TaskQuery{
		TaskPredicate: store.TaskPredicate{UserID: userID},
		Limit:         10,
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgresTaskStore_Count(t *testing.T) {
	s, mock := newTaskStoreWithMock(t)
	userID := uuid.New()
	completed := domain.TaskStatusCompleted
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND status <> $2 AND due_date < $3")).
		WithArgs(userID, "completed", now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := s.Count(context.Background(), store.TaskPredicate{
		UserID: userID, ExcludeStatus: &completed, DueBefore: &now,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPostgresTaskStore_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, mock := newTaskStoreWithMock(t)
		task := testTask(t, uuid.New())
		require.NoError(t, task.Complete(task.UpdatedAt.Add(time.Minute)))

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WithArgs(task.Title, task.Description, "completed", "high", nil, *task.CompletedAt,
				task.UpdatedAt, task.ID, task.UserID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row for owner", func(t *testing.T) {
		s, mock := newTaskStoreWithMock(t)
		task := testTask(t, uuid.New())
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $8 AND user_id = $9")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	s, mock := newTaskStoreWithMock(t)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1 AND user_id = $2")).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1 AND user_id = $2")).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), id, owner))
	assert.ErrorIs(t, s.Delete(context.Background(), id, owner), store.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package api

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// fakeAccountService implements service.AccountService with function fields.
type fakeAccountService struct {
	RegisterFn       func(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	AuthenticateFn   func(ctx context.Context, email, password string) (*domain.User, error)
	ChangePasswordFn func(ctx context.Context, id uuid.UUID, current, next string) (bool, error)
	GetAccountFn     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

var _ service.AccountService = (*fakeAccountService)(nil)

func (f *fakeAccountService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	return f.RegisterFn(ctx, in)
}

func (f *fakeAccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return f.AuthenticateFn(ctx, email, password)
}

func (f *fakeAccountService) VerifyPassword(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeAccountService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) (bool, error) {
	return f.ChangePasswordFn(ctx, id, current, next)
}

func (f *fakeAccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return f.GetAccountFn(ctx, id)
}

// fakeTaskService implements service.TaskService with function fields.
type fakeTaskService struct {
	CreateFn       func(ctx context.Context, userID uuid.UUID, in service.CreateTaskInput) (*domain.Task, error)
	ListFn         func(ctx context.Context, userID uuid.UUID, in service.ListTasksInput) (*service.TaskPage, error)
	GetFn          func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	UpdateFn       func(ctx context.Context, userID, taskID uuid.UUID, in service.UpdateTaskInput) (*domain.Task, error)
	MarkCompleteFn func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	DeleteFn       func(ctx context.Context, userID, taskID uuid.UUID) error
	StatsFn        func(ctx context.Context, userID uuid.UUID) (*service.TaskStats, error)
}

var _ service.TaskService = (*fakeTaskService)(nil)

func (f *fakeTaskService) Create(ctx context.Context, userID uuid.UUID, in service.CreateTaskInput) (*domain.Task, error) {
	return f.CreateFn(ctx, userID, in)
}

func (f *fakeTaskService) List(ctx context.Context, userID uuid.UUID, in service.ListTasksInput) (*service.TaskPage, error) {
	return f.ListFn(ctx, userID, in)
}

func (f *fakeTaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return f.GetFn(ctx, userID, taskID)
}

func (f *fakeTaskService) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	in service.UpdateTaskInput,
) (*domain.Task, error) {
	return f.UpdateFn(ctx, userID, taskID, in)
}

func (f *fakeTaskService) MarkComplete(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return f.MarkCompleteFn(ctx, userID, taskID)
}

func (f *fakeTaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return f.DeleteFn(ctx, userID, taskID)
}

func (f *fakeTaskService) Stats(ctx context.Context, userID uuid.UUID) (*service.TaskStats, error) {
	return f.StatsFn(ctx, userID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer wires handlers into a chi router the way cmd/server does.
type testServer struct {
	router   chi.Router
	jwt      auth.JWTService
	revoker  *mocks.MockTokenRevoker
	accounts *fakeAccountService
	tasks    *fakeTaskService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		jwt:      auth.RequireTestJWTService(t),
		revoker:  mocks.NewMockTokenRevoker(),
		accounts: &fakeAccountService{},
		tasks:    &fakeTaskService{},
	}

	authHandler := NewAuthHandler(ts.accounts, ts.jwt, ts.revoker, auth.DefaultJWTConfig(), discardLogger())
	userHandler := NewUserHandler(ts.accounts, discardLogger())
	taskHandler := NewTaskHandler(ts.tasks, discardLogger())
	authMiddleware := middleware.NewAuthMiddleware(ts.jwt, ts.revoker)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me/password", userHandler.ChangePassword)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/stats", taskHandler.GetStats)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Patch("/tasks/{id}/complete", taskHandler.CompleteTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		})
	})
	ts.router = r
	return ts
}

// do sends a request with an optional bearer token and JSON body.
func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// accessToken returns a valid access token for userID.
func (ts *testServer) accessToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := ts.jwt.GenerateToken(context.Background(), userID, "ada@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}


package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AccountService manages account credentials.
type AccountService interface {
	// Register creates an active account. Fails with a conflict when the
	// email is already taken.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Authenticate returns the account matching email and password. Unknown
	// email, inactive account and wrong password are indistinguishable.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// VerifyPassword compares plaintext against hash.
	VerifyPassword(ctx context.Context, plaintext, hash string) (bool, error)

	// ChangePassword replaces the account's password after verifying the
	// current one.
	ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) (bool, error)

	// GetAccount returns the account's profile.
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.User, error)
}

// dummyPassword is hashed once and compared against when an email is
// unknown, so such logins cost as much as real ones.
const dummyPassword = "timing-equalization-password"

type accountService struct {
	users   store.UserStore
	hasher  auth.PasswordHasher
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

var _ AccountService = (*accountService)(nil)

// NewAccountService creates an AccountService.
func NewAccountService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	emitter events.EventEmitter,
	log *slog.Logger,
) AccountService {
	if users == nil || hasher == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("users and hasher are required")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &accountService{
		users:   users,
		hasher:  hasher,
		emitter: emitter,
		logger:  log.With("component", "account_service"),
		now:     time.Now,
	}
}

func (s *accountService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Register implements AccountService.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.Invalid(err)
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, domain.Invalid(err)
	}
	if err := domain.ValidateNames(in.FirstName, in.LastName); err != nil {
		return nil, domain.Invalid(err)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.log(ctx).Debug("registration with existing email rejected")
		return nil, domain.Conflict(msgEmailTaken)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		s.log(ctx).Error("failed to look up email", "error", err)
		return nil, translateUserErr(err, "look up account")
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		s.log(ctx).Error("failed to hash password", "error", err)
		return nil, domain.Internal("failed to hash password", err)
	}

	user, err := domain.NewUser(email, hashed, in.FirstName, in.LastName)
	if err != nil {
		return nil, domain.Invalid(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.log(ctx).Debug("concurrent registration with same email rejected")
		} else {
			s.log(ctx).Error("failed to create account", "error", err)
		}
		return nil, translateUserErr(err, "create account")
	}

	s.log(ctx).Info("account registered", "user_id", user.ID)
	s.emit(ctx, events.NewEvent(events.AccountRegistered, user.ID, nil))

	return user, nil
}

// Authenticate implements AccountService.
func (s *accountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to look up account for login", "error", err)
			return nil, translateUserErr(err, "look up account")
		}
		s.compareDummy(ctx, password)
		return nil, domain.Unauthorized(msgInvalidCredentials)
	}

	ok, err := s.hasher.Verify(ctx, password, user.HashedPassword)
	if err != nil {
		s.log(ctx).Error("failed to verify password", "error", err, "user_id", user.ID)
		return nil, domain.Internal("failed to verify password", err)
	}
	if !ok || !user.Active {
		s.log(ctx).Debug("login rejected", "user_id", user.ID, "active", user.Active)
		return nil, domain.Unauthorized(msgInvalidCredentials)
	}

	return user, nil
}

// compareDummy spends one bcrypt comparison without revealing anything.
func (s *accountService) compareDummy(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(context.WithoutCancel(ctx), dummyPassword)
		if err != nil {
			s.log(ctx).Warn("failed to prepare dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
}

// VerifyPassword implements AccountService.
func (s *accountService) VerifyPassword(ctx context.Context, plaintext, hash string) (bool, error) {
	ok, err := s.hasher.Verify(ctx, plaintext, hash)
	if err != nil {
		return false, domain.Internal("failed to verify password", err)
	}
	return ok, nil
}

// ChangePassword implements AccountService.
func (s *accountService) ChangePassword(
	ctx context.Context,
	accountID uuid.UUID,
	current, next string,
) (bool, error) {
	if next == current {
		return false, domain.BadRequest(msgPasswordUnchanged)
	}
	if err := domain.ValidatePassword(next); err != nil {
		return false, domain.Invalid(err)
	}

	user, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return false, translateUserErr(err, "load account")
	}

	ok, err := s.hasher.Verify(ctx, current, user.HashedPassword)
	if err != nil {
		s.log(ctx).Error("failed to verify current password", "error", err, "user_id", accountID)
		return false, domain.Internal("failed to verify password", err)
	}
	if !ok {
		return false, domain.BadRequest(msgCurrentPasswordWrong)
	}

	hashed, err := s.hasher.Hash(ctx, next)
	if err != nil {
		s.log(ctx).Error("failed to hash new password", "error", err, "user_id", accountID)
		return false, domain.Internal("failed to hash password", err)
	}

	user.HashedPassword = hashed
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		s.log(ctx).Error("failed to store new password", "error", err, "user_id", accountID)
		return false, translateUserErr(err, "update account")
	}

	s.log(ctx).Info("password changed", "user_id", accountID)
	s.emit(ctx, events.NewEvent(events.AccountPasswordChanged, accountID, nil))

	return true, nil
}

// GetAccount implements AccountService.
func (s *accountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to load account", "error", err, "user_id", accountID)
		}
		return nil, translateUserErr(err, "load account")
	}
	return user, nil
}

// emit publishes a diagnostic event. Failures are logged, never returned.
func (s *accountService) emit(ctx context.Context, event *events.Event) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.log(ctx).Warn("failed to emit event", "error", err, "event_type", event.Type)
	}
}

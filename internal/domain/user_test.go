package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Jane.Doe@Example.COM ", "$2a$12$hash", " Jane ", "Doe")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.True(t, user.Active, "new accounts are active")
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := func() *User {
		return &User{
			ID:             uuid.New(),
			Email:          "user@example.com",
			HashedPassword: "$2a$12$hash",
			Active:         true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{"valid", func(u *User) {}, nil},
		{"nil id", func(u *User) { u.ID = uuid.Nil }, ErrEmptyUserID},
		{"empty email", func(u *User) { u.Email = "" }, ErrEmptyEmail},
		{"malformed email", func(u *User) { u.Email = "not-an-email" }, ErrInvalidEmail},
		{"missing hash", func(u *User) { u.HashedPassword = "" }, ErrEmptyHashedPassword},
		{"long first name", func(u *User) { u.FirstName = strings.Repeat("a", MaxNameLength+1) }, ErrNameTooLong},
		{"long last name", func(u *User) { u.LastName = strings.Repeat("я", MaxNameLength+1) }, ErrNameTooLong},
		{"multibyte name at limit", func(u *User) { u.FirstName = strings.Repeat("я", MaxNameLength) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(u)
			err := u.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a@b.io", NormalizeEmail("A@B.IO"))
	assert.Equal(t, "a@b.io", NormalizeEmail("\t a@b.io \n"))
	assert.Equal(t, NormalizeEmail("Mixed@Case.com"), NormalizeEmail("mixed@case.COM"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"empty", "", ErrEmptyPassword},
		{"one short", strings.Repeat("x", MinPasswordLength-1), ErrPasswordTooShort},
		{"minimum", strings.Repeat("x", MinPasswordLength), nil},
		{"maximum", strings.Repeat("x", MaxPasswordLength), nil},
		{"one long", strings.Repeat("x", MaxPasswordLength+1), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

package mocks

import (
	"context"
	"strings"
)

// MockPasswordHasher implements auth.PasswordHasher for testing. By default
// Hash prefixes the password with "hashed:" and Verify checks that prefix.
type MockPasswordHasher struct {
	HashFn   func(ctx context.Context, password string) (string, error)
	VerifyFn func(ctx context.Context, password, hash string) (bool, error)

	// HashCalls and VerifyCalls count invocations
	HashCalls   int
	VerifyCalls int
}

// Hash implements auth.PasswordHasher
func (m *MockPasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	m.HashCalls++
	if m.HashFn != nil {
		return m.HashFn(ctx, password)
	}
	return "hashed:" + password, nil
}

// Verify implements auth.PasswordHasher
func (m *MockPasswordHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	m.VerifyCalls++
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, password, hash)
	}
	return strings.TrimPrefix(hash, "hashed:") == password && strings.HasPrefix(hash, "hashed:"), nil
}

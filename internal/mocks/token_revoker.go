package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockTokenRevoker is an in-memory auth.TokenRevoker. Entries never expire.
type MockTokenRevoker struct {
	mu      sync.Mutex
	Revoked map[string]time.Duration

	// Err, when set, is returned by every call
	Err error
}

var _ auth.TokenRevoker = (*MockTokenRevoker)(nil)

// NewMockTokenRevoker creates an empty revoker.
func NewMockTokenRevoker() *MockTokenRevoker {
	return &MockTokenRevoker{Revoked: make(map[string]time.Duration)}
}

// Revoke implements auth.TokenRevoker
func (m *MockTokenRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Revoked[jti] = ttl
	return nil
}

// IsRevoked implements auth.TokenRevoker
func (m *MockTokenRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.Revoked[jti]
	return ok, nil
}

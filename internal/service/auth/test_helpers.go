package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
		BcryptCost:                  bcrypt.MinCost,
	}
}

// NewTestJWTService creates a JWT service with default configuration for testing.
func NewTestJWTService() (JWTService, error) {
	return NewJWTService(DefaultJWTConfig())
}

// RequireTestJWTService creates a test JWT service and uses require to handle errors.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	service, err := NewTestJWTService()
	require.NoError(t, err, "Failed to create test JWT service")
	return service
}

// RequireTestHasher returns a bcrypt hasher at minimum cost running inline.
func RequireTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost, nil)
	require.NoError(t, err, "Failed to create test hasher")
	return h
}

// GenerateAuthHeaderForTesting creates an Authorization header value with Bearer prefix
// containing a valid access token for the account.
func GenerateAuthHeaderForTesting(userID uuid.UUID, email string) (string, error) {
	svc, err := NewTestJWTService()
	if err != nil {
		return "", fmt.Errorf("failed to create JWT service: %w", err)
	}
	token, err := svc.GenerateToken(context.Background(), userID, email)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// GenerateAuthHeaderForTestingT is a test helper that creates an Authorization header
// and fails the test if token generation fails.
func GenerateAuthHeaderForTestingT(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	header, err := GenerateAuthHeaderForTesting(userID, email)
	require.NoError(t, err, "Failed to generate auth header")
	return header
}

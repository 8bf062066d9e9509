package auth

import (
	"context"
	"time"
)

// TokenRevoker records revoked token ids until the tokens would have
// expired anyway.
type TokenRevoker interface {
	// Revoke marks jti as revoked for ttl.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevokeClaims revokes the token described by claims for its remaining
// lifetime. Tokens without an id or already expired need no entry.
func RevokeClaims(ctx context.Context, r TokenRevoker, claims *Claims, now time.Time) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.RemainingLifetime(now)
	if ttl <= 0 {
		return nil
	}
	return r.Revoke(ctx, claims.ID, ttl)
}

// Package redis stores revoked token ids in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

const revokedKeyPrefix = "revoked:"

// New creates a Redis client from a redis:// URL and verifies it answers.
func New(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("platform/redis: parse url: %w", err)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/redis: ping: %w", err)
	}

	return client, nil
}

// TokenRevoker implements auth.TokenRevoker with one expiring key per
// revoked token id.
type TokenRevoker struct {
	client goredis.Cmdable
	logger *slog.Logger
}

var _ auth.TokenRevoker = (*TokenRevoker)(nil)

// NewTokenRevoker creates a revoker backed by client.
func NewTokenRevoker(client goredis.Cmdable, logger *slog.Logger) *TokenRevoker {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenRevoker{
		client: client,
		logger: logger.With(slog.String("component", "token_revoker")),
	}
}

// Revoke implements auth.TokenRevoker.
func (r *TokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("platform/redis: empty token id")
	}
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
		r.logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))
		return fmt.Errorf("platform/redis: revoke: %w", err)
	}
	r.logger.DebugContext(ctx, "token revoked",
		slog.String("token_id", jti),
		slog.Duration("ttl", ttl))
	return nil
}

// IsRevoked implements auth.TokenRevoker.
func (r *TokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("platform/redis: lookup: %w", err)
	}
	return n > 0, nil
}

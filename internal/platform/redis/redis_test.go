package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRevoker(t *testing.T) (*TokenRevoker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenRevoker(client, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestTokenRevoker(t *testing.T) {
	r, mr := newTestRevoker(t)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("revoked:jti-1"))
	assert.Equal(t, time.Minute, mr.TTL("revoked:jti-1"))

	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation is per token id")

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entries expire with the token")
}

func TestTokenRevoker_IgnoresExpiredTokens(t *testing.T) {
	r, mr := newTestRevoker(t)

	require.NoError(t, r.Revoke(context.Background(), "old", 0))
	assert.False(t, mr.Exists("revoked:old"))

	assert.Error(t, r.Revoke(context.Background(), "", time.Minute))
}

func TestTokenRevoker_RedisDown(t *testing.T) {
	r, mr := newTestRevoker(t)
	mr.Close()

	_, err := r.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
	assert.Error(t, r.Revoke(context.Background(), "jti", time.Minute))
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = New(context.Background(), "not a url")
	assert.Error(t, err)
}

package service_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repository-api/internal/service"
)

func newTestRevocationStore(t *testing.T) *service.RevocationStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return service.NewRevocationStore(client, time.Hour, zap.NewNop())
}

func TestRevocationWatermark(t *testing.T) {
	store := newTestRevocationStore(t)
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, store.Revoke(ctx, "acme", 1, at))

	assert.True(t, store.Revoked(ctx, "acme", 1, at.Add(-time.Second)))
	assert.False(t, store.Revoked(ctx, "acme", 1, at.Add(time.Second)))
}

func TestRevocationIsScopedToUserAndTenant(t *testing.T) {
	store := newTestRevocationStore(t)
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, store.Revoke(ctx, "acme", 1, at))

	issued := at.Add(-time.Second)
	assert.False(t, store.Revoked(ctx, "acme", 2, issued))
	assert.False(t, store.Revoked(ctx, "globex", 1, issued))
}

func TestRevocationWithoutRedisIsDisabled(t *testing.T) {
	store := service.NewRevocationStore(nil, time.Hour, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, store.Revoke(ctx, "acme", 1, time.Now()))
	assert.False(t, store.Revoked(ctx, "acme", 1, time.Now().Add(-time.Hour)))
}

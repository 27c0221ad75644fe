package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RevocationStore keeps a per-user watermark: tokens issued before it are
// invalid. The watermark is advanced at logout and expires on its own once
// every token minted before it would have expired anyway. When Redis is
// unreachable the check is skipped, trading strictness for availability.
type RevocationStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRevocationStore builds the store. A nil client disables revocation.
func NewRevocationStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RevocationStore {
	return &RevocationStore{client: client, ttl: ttl, logger: logger}
}

// Revoke moves the user's watermark to the given instant.
func (r *RevocationStore) Revoke(ctx context.Context, schema string, userID int64, at time.Time) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Set(ctx, r.key(schema, userID), at.Unix(), r.ttl).Err()
}

// Revoked reports whether a token issued at the given instant predates the
// user's watermark.
func (r *RevocationStore) Revoked(ctx context.Context, schema string, userID int64, issuedAt time.Time) bool {
	if r == nil || r.client == nil {
		return false
	}

	val, err := r.client.Get(ctx, r.key(schema, userID)).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("revocation check unavailable", zap.Error(err))
		}
		return false
	}

	floor, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false
	}
	return issuedAt.Unix() < floor
}

func (r *RevocationStore) key(schema string, userID int64) string {
	return fmt.Sprintf("auth:revoked_before:%s:%d", schema, userID)
}

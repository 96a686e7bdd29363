package notification

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UnreadCache caches per-user unread counts in Redis so the badge query does
// not hit Postgres on every poll. It is strictly an optimization: every miss
// or Redis error falls through to the store, and every read-state transition
// invalidates the key.
//
// A nil *UnreadCache is valid and does nothing, matching the platform
// convention of a nil client when Redis is not configured.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewUnreadCache wraps a Redis client. Returns nil when client is nil so the
// tracker can skip caching transparently.
func NewUnreadCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *UnreadCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &UnreadCache{client: client, ttl: ttl, logger: logger}
}

func unreadKey(recipientID uuid.UUID) string {
	return "notifications:unread:" + recipientID.String()
}

// Get returns the cached count and whether the key was warm.
func (c *UnreadCache) Get(ctx context.Context, recipientID uuid.UUID) (int64, bool) {
	if c == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, unreadKey(recipientID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "unread cache get failed", "error", err)
		}
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with the configured TTL. Failures are logged only.
func (c *UnreadCache) Set(ctx context.Context, recipientID uuid.UUID, count int64) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, unreadKey(recipientID), count, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "unread cache set failed", "error", err)
	}
}

// Invalidate drops the cached count after any read-state transition or new
// dispatch.
func (c *UnreadCache) Invalidate(ctx context.Context, recipientID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, unreadKey(recipientID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "unread cache invalidate failed", "error", err)
	}
}

package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eventora/backend/internal/models"
)

// UserCache is a short-TTL Redis cache of user rows keyed by user ID. It
// spares the resolver a Postgres round-trip per request; admin mutations
// must invalidate so status/role changes take effect immediately.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache creates a user cache with the given TTL.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

func userKey(id uuid.UUID) string { return "user:" + id.String() }

// Get returns the cached user, or nil on miss or decode failure.
func (c *UserCache) Get(ctx context.Context, id uuid.UUID) *models.User {
	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	return &u
}

// Set stores the user row. Failures are ignored: the cache is best-effort.
func (c *UserCache) Set(ctx context.Context, u *models.User) {
	raw, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, userKey(u.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached row for a user.
func (c *UserCache) Invalidate(ctx context.Context, id uuid.UUID) {
	_ = c.client.Del(ctx, userKey(id)).Err()
}

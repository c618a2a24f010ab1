// Package cache keeps a short-lived copy of each user's profile in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "dadkeeper:profile:"
	genPrefix = "dadkeeper:profile-gen:"
)

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	return client, nil
}

// RedisProfileCache stores JSON-encoded profiles with a TTL.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProfileCache wraps client; entries expire after ttl.
func NewRedisProfileCache(client *redis.Client, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

func dataKey(userID string, gen int64) string {
	return keyPrefix + userID + ":" + strconv.FormatInt(gen, 10)
}

func (c *RedisProfileCache) generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, genPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get reads the entry for the user's current generation and reports that
// generation. A miss is common.ErrorNotFound.
func (c *RedisProfileCache) Get(ctx context.Context, userID string) (*models.Profile, int64, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("redis get generation: %w", err)
	}
	raw, err := c.client.Get(ctx, dataKey(userID, gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, common.ErrorNotFound
		}
		return nil, gen, fmt.Errorf("redis get: %w", err)
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, gen, fmt.Errorf("decode cached profile: %w", err)
	}
	return &p, gen, nil
}

// Set stores p under gen. If the user has moved past gen the entry is never
// read and expires with the TTL.
func (c *RedisProfileCache) Set(ctx context.Context, p *models.Profile, gen int64) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return c.client.Set(ctx, dataKey(p.UserID, gen), raw, c.ttl).Err()
}

// Invalidate bumps the user's generation. The counter has no TTL so it can
// never fall back to a generation that still has data.
func (c *RedisProfileCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Incr(ctx, genPrefix+userID).Err()
}

// Ping is used by the readiness check.
func (c *RedisProfileCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// NoopProfileCache is used when no Redis is configured. Every read misses.
type NoopProfileCache struct{}

func (NoopProfileCache) Get(context.Context, string) (*models.Profile, int64, error) {
	return nil, 0, common.ErrorNotFound
}
func (NoopProfileCache) Set(context.Context, *models.Profile, int64) error { return nil }
func (NoopProfileCache) Invalidate(context.Context, string) error { return nil }

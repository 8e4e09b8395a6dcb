package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/api/metrics"
)

// RedisCache implements Cache on top of go-redis using versioned regions.
// Every region has a version counter at "cache:ver:<region>"; entry keys
// embed the current version, so bumping the counter orphans all existing
// entries at once. Orphaned entries expire via their TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisCache wraps the given Redis client. When ttl <= 0, DefaultTTL is used.
func NewRedisCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCache) Get(ctx context.Context, region, key string, dest any) bool {
	raw, err := c.client.Get(ctx, c.entryKey(ctx, region, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// fail safe: treat backend errors as a miss
			c.log.Warn().Err(err).Str("region", region).Msg("cache get failed")
		}
		metrics.CacheMissesTotal.WithLabelValues(region).Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn().Err(err).Str("region", region).Msg("cache entry corrupt")
		metrics.CacheMissesTotal.WithLabelValues(region).Inc()
		return false
	}
	metrics.CacheHitsTotal.WithLabelValues(region).Inc()
	return true
}

func (c *RedisCache) Set(ctx context.Context, region, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("region", region).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, c.entryKey(ctx, region, key), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("region", region).Msg("cache set failed")
	}
}

func (c *RedisCache) Delete(ctx context.Context, region string, keys ...string) {
	if len(keys) == 0 {
		return
	}
	entryKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		entryKeys = append(entryKeys, c.entryKey(ctx, region, k))
	}
	if err := c.client.Del(ctx, entryKeys...).Err(); err != nil {
		c.log.Warn().Err(err).Str("region", region).Msg("cache delete failed")
	}
}

func (c *RedisCache) InvalidateRegion(ctx context.Context, region string) {
	if err := c.client.Incr(ctx, versionKey(region)).Err(); err != nil {
		c.log.Warn().Err(err).Str("region", region).Msg("cache region invalidation failed")
		return
	}
	metrics.CacheInvalidationsTotal.WithLabelValues(region).Inc()
}

func (c *RedisCache) entryKey(ctx context.Context, region, key string) string {
	ver, err := c.client.Get(ctx, versionKey(region)).Int64()
	if err != nil && err != redis.Nil {
		c.log.Warn().Err(err).Str("region", region).Msg("cache version read failed")
	}
	return fmt.Sprintf("cache:%s:v%d:%s", region, ver, key)
}

func versionKey(region string) string {
	return "cache:ver:" + region
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/library-community/internal/domain"
)

// StatsCache stores the latest community snapshot for a short time.
type StatsCache interface {
	// Get returns the cached snapshot and whether it was present.
	Get(ctx context.Context) (*domain.CommunityStats, bool, error)
	// Set stores st until the cache's TTL elapses.
	Set(ctx context.Context, st *domain.CommunityStats) error
}

const statsCacheKey = "community:stats:v1"

// RedisStatsCache is a StatsCache backed by a single Redis key.
type RedisStatsCache struct {
	Client redis.Cmdable
	Key    string
	TTL    time.Duration
}

// NewRedisClient parses a redis:// URL and returns a connected client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewRedisStatsCache constructs a cache entry that expires after ttl.
func NewRedisStatsCache(client redis.Cmdable, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{Client: client, Key: statsCacheKey, TTL: ttl}
}

// Get implements StatsCache.
func (c *RedisStatsCache) Get(ctx context.Context) (*domain.CommunityStats, bool, error) {
	b, err := c.Client.Get(ctx, c.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var st domain.CommunityStats
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, false, err
	}
	return &st, true, nil
}

// Set implements StatsCache.
func (c *RedisStatsCache) Set(ctx context.Context, st *domain.CommunityStats) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.Key, b, c.TTL).Err()
}

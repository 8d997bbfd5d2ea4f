package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) RatingMarkerKey(orderID string) string {
	return "rating:order:" + orderID
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	res, err := c.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}

func (c *RedisCache) SetMarker(ctx context.Context, key string) error {
	return c.Client.Set(ctx, key, "1", c.TTL).Err()
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	Client *redis.Client
	Now    func() time.Time
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{Client: client, Now: time.Now}
}

type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateDecision, error) {
	now := l.Now()
	windowStart := now.Truncate(window)
	reset := windowStart.Add(window)
	counterKey := "ratelimit:" + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateDecision{Allowed: true, Limit: limit, Remaining: limit}, err
	}

	count := int(incr.Val())
	decision := RateDecision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
	}
	if !decision.Allowed {
		decision.RetryAfter = reset.Sub(now)
	}
	return decision, nil
}

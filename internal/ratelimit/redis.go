package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisLimiter counts requests per key in fixed windows shared by every
// instance pointing at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	rate   Rate
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(ctx context.Context, cfg RedisConfig, r Rate) (*RedisLimiter, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "model-select:ratelimit"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisLimiter{client: client, rate: r, prefix: cfg.Prefix, now: time.Now}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowStart := now.Truncate(l.rate.Window)
	redisKey := l.keyFor(key, windowStart)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.rate.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis rate limit %s: %w", key, err)
	}

	return decide(l.rate, incr.Val(), windowStart.Add(l.rate.Window).Sub(now)), nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

func (l *RedisLimiter) keyFor(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, windowStart.Unix())
}

func decide(r Rate, count int64, untilReset time.Duration) Decision {
	remaining := int64(r.Limit) - count
	if remaining < 0 {
		remaining = 0
	}
	decision := Decision{
		Allowed:   count <= int64(r.Limit),
		Limit:     r.Limit,
		Remaining: int(remaining),
	}
	if !decision.Allowed {
		decision.RetryAfter = untilReset
	}
	return decision
}

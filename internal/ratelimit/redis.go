package ratelimit

import (
	"context"
	"time"

	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and consumes one token atomically.
// KEYS[1] bucket key, ARGV[1] rate per second, ARGV[2] capacity, ARGV[3] now in seconds
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if not tokens or not last_refill then
    tokens = capacity
    last_refill = now
end

local elapsed = now - last_refill
if elapsed > 0 then
    tokens = math.min(capacity, tokens + elapsed * rate)
    last_refill = now
end

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, 60)

return allowed
`)

// RedisLimiter shares one token bucket between every instance pointed at the same Redis
type RedisLimiter struct {
	client   *redis.Client
	key      string
	rate     float64
	capacity int
}

func NewRedisLimiter(cfg config.RateLimitConfig) *RedisLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		MaxRetries:   1,
	})

	return &RedisLimiter{
		client:   client,
		key:      cfg.Redis.KeyPrefix + ":global",
		rate:     cfg.RequestsPerSecond,
		capacity: cfg.Burst,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context) (bool, error) {
	now := float64(time.Now().UnixMicro()) / 1e6

	allowed, err := tokenBucketScript.Run(ctx, l.client, []string{l.key}, l.rate, l.capacity, now).Int64()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Rate limiter unavailable").
			Mark(ierr.ErrSystem)
	}

	return allowed == 1, nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

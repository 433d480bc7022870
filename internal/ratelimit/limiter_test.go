package ratelimit

import (
	"context"
	"testing"

	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	assert.IsType(t, &MemoryLimiter{}, New(cfg))

	cfg.Backend = types.RateLimitBackendRedis
	cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:1", KeyPrefix: "test"}
	l := New(cfg)
	require.IsType(t, &RedisLimiter{}, l)
	assert.Equal(t, "test:global", l.(*RedisLimiter).key)
	assert.NoError(t, l.(*RedisLimiter).Close())
}

func TestMemoryLimiter_ExhaustsBurst(t *testing.T) {
	l := NewMemoryLimiter(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLimiter_Unreachable(t *testing.T) {
	l := NewRedisLimiter(config.RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		Redis:             config.RedisConfig{Addr: "127.0.0.1:1", KeyPrefix: "test"},
	})
	defer l.Close()

	ok, err := l.Allow(context.Background())
	assert.False(t, ok)
	assert.True(t, ierr.IsSystem(err))
}

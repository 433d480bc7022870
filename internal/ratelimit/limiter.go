package ratelimit

import (
	"context"

	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/types"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request may be served now
type Limiter interface {
	Allow(ctx context.Context) (bool, error)
}

// New builds the limiter selected by rate_limit.backend
func New(cfg config.RateLimitConfig) Limiter {
	if cfg.Backend == types.RateLimitBackendRedis {
		return NewRedisLimiter(cfg)
	}
	return NewMemoryLimiter(cfg)
}

// MemoryLimiter is a token bucket local to this process
type MemoryLimiter struct {
	limiter *rate.Limiter
}

func NewMemoryLimiter(cfg config.RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context) (bool, error) {
	return l.limiter.Allow(), nil
}

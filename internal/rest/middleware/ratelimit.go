package middleware

import (
	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware rejects requests over the configured rate before they
// reach a handler. Requests are let through when the limiter itself fails.
func RateLimitMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	limiter := ratelimit.New(cfg.RateLimit)

	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context())
		if err != nil {
			logger.Warnw("rate limiter failed, allowing request",
				"backend", cfg.RateLimit.Backend,
				"error", err,
			)
			c.Next()
			return
		}

		if !allowed {
			c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, please retry shortly").
				Mark(ierr.ErrRateLimited))
			c.Abort()
			return
		}
		c.Next()
	}
}

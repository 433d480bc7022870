package middleware

import (
	"time"

	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/types"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware gives every request its own hub tagged with the request id
// and route, then hands over to sentrygin for panic capture and tracing.
// Must run after RequestIDMiddleware.
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	capture := sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetTag("request_id", types.GetRequestID(ctx))
		hub.Scope().SetTag("route", c.FullPath())
		hub.Scope().SetTag("environment", string(cfg.Deployment.Mode))

		c.Request = c.Request.WithContext(sentry.SetHubOnContext(ctx, hub))
		capture(c)
	}
}

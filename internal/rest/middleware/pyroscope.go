package middleware

import (
	"context"

	"github.com/complysense/complysense/internal/pyroscope"
	"github.com/gin-gonic/gin"
)

// PyroscopeMiddleware labels profile samples with the matched route. Unmatched
// paths share one label to keep cardinality bounded.
func PyroscopeMiddleware(svc *pyroscope.Service) gin.HandlerFunc {
	if !svc.IsEnabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		svc.TagWrapper(c.Request.Context(), map[string]string{
			"method": c.Request.Method,
			"route":  route,
		}, func(context.Context) {
			c.Next()
		})
	}
}

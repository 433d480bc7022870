package middleware

import (
	"net/http"
	"strings"

	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSMiddleware lets the upload page call the API from the configured
// origins. "*" allows any origin.
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	origins := cfg.Server.AllowedOrigins
	allowAny := len(origins) == 0 || lo.Contains(origins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case allowAny:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && lo.Contains(origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", types.HeaderRequestID}, ", "))
		c.Header("Access-Control-Expose-Headers", types.HeaderRequestID)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

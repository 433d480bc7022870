package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/complysense/complysense/internal/api/dto"
	"github.com/complysense/complysense/internal/logger"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *postgres.DB. A nil DB pings successfully.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *logger.Logger
}

func NewHealthHandler(db Pinger, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// @Summary Health check
// @Description Reports ok when the service and its database are reachable
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warnw("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

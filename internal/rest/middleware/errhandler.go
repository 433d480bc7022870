package middleware

import (
	"net/http"

	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last handler error as the standard error response.
// Server-side failures are logged with the full internal message, which never
// reaches the client.
func ErrorHandler(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed",
				"method", c.Request.Method,
				"route", c.FullPath(),
				"status", status,
				"request_id", types.GetRequestID(c.Request.Context()),
				"error", err,
			)
		}

		c.JSON(status, ierr.ErrorResponse{
			Success: false,
			Error: ierr.ErrorDetail{
				Display: ierr.DisplayMessage(err),
				Details: ierr.SafeDetails(err),
			},
		})
	}
}

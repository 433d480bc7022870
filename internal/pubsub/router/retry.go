package router

import (
	"net"

	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
)

func shouldRetry(logger *logger.Logger, err error) bool {
	// Network errors
	var netErr net.Error
	if ierr.As(err, &netErr) && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	// Malformed or dangling events never succeed
	if ierr.IsValidation(err) || ierr.IsNotFound(err) {
		logger.Debugw("non-retryable handler error", "error", err)
		return false
	}

	// By default, retry unknown errors
	return true
}

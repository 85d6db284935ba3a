package router

import (
	"context"
	"net"

	"github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
)

func shouldRetry(logger *logger.Logger, err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	if err == context.Canceled {
		return false
	}

	// business errors do not change on retry
	if errors.IsValidation(err) ||
		errors.IsNotFound(err) ||
		errors.IsInvalidOperation(err) ||
		errors.IsPermissionDenied(err) {
		logger.Debugw("not retrying business error", "error", err)
		return false
	}

	return true
}

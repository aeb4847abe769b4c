package apperr

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
)

// Handle logs an error that cannot be returned to a caller. Cancellation is
// expected on shutdown and is logged at debug level.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}
	logger := ctxlog.From(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Debug(msg, "error", err)
		return
	}
	logger.Error(msg, "error", err)
}

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/bossbat/job"
)

// Recover returns middleware that turns a panic further down the chain
// into an error and logs the stack.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, occ *job.Occurrence, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("job panicked",
					slog.String("job_name", occ.Name),
					slog.String("occurrence_id", occ.ID.String()),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				retErr = fmt.Errorf("panic in job %s: %v", occ.Name, r)
			}
		}()
		return next(ctx)
	}
}

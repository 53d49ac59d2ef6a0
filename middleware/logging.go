package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/bossbat/job"
)

// Logging returns middleware that logs each occurrence and its outcome.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, occ *job.Occurrence, next Handler) error {
		logger.Info("job started",
			slog.String("job_name", occ.Name),
			slog.String("occurrence_id", occ.ID.String()),
			slog.Bool("demand", occ.Demand),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("job failed",
				slog.String("job_name", occ.Name),
				slog.String("occurrence_id", occ.ID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("job completed",
				slog.String("job_name", occ.Name),
				slog.String("occurrence_id", occ.ID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}

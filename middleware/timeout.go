package middleware

import (
	"context"
	"time"

	"github.com/xraph/bossbat/job"
)

// TimeoutKey is the definition metadata key that overrides the Timeout
// default for one job. The value is a Go duration string.
const TimeoutKey = "timeout"

// Timeout returns middleware that gives the rest of the chain a deadline.
// A job's TimeoutKey metadata takes precedence over d; a non-positive
// result leaves the context alone.
//
// The lock is held for a fixed time regardless. Timeouts longer than the
// engine's lock TTL do not extend it.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, occ *job.Occurrence, next Handler) error {
		limit := d
		if occ.Definition != nil {
			if v, ok := occ.Definition.Metadata[TimeoutKey]; ok {
				if parsed, err := time.ParseDuration(v); err == nil {
					limit = parsed
				}
			}
		}
		if limit <= 0 {
			return next(ctx)
		}

		ctx, cancel := context.WithTimeout(ctx, limit)
		defer cancel()
		return next(ctx)
	}
}

// Package middleware provides the pipeline every occurrence runs through.
//
// A [Middleware] wraps the job's work. [Chain] composes them so that the
// first registered is the outermost:
//
//	// logging → recover → work
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// A middleware that returns without calling next skips the work for that
// occurrence. The lock is still released afterwards.
//
// # Built-in Middleware
//
//   - [Logging]: logs start, outcome and duration
//   - [Recover]: converts panics to errors
//   - [Timeout]: puts a deadline on the work's context
//   - [Throttle]: per-job rate limit within one process
//   - [Tracing]: OpenTelemetry span per occurrence
//   - [Metrics]: OpenTelemetry duration histogram and run counter by outcome
//
// # Writing Middleware
//
//	func OnlyWeekdays() middleware.Middleware {
//	    return func(ctx context.Context, occ *job.Occurrence, next middleware.Handler) error {
//	        if wd := time.Now().Weekday(); wd == time.Saturday || wd == time.Sunday {
//	            return nil
//	        }
//	        return next(ctx)
//	    }
//	}
package middleware

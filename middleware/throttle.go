package middleware

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/xraph/bossbat/job"
)

// ErrThrottled is returned for occurrences skipped by Throttle.
var ErrThrottled = errors.New("bossbat: occurrence throttled")

// Throttle returns middleware that allows at most limit occurrences per
// second of each job in this process, with bursts up to burst. Excess
// occurrences do not run and return ErrThrottled.
func Throttle(limit rate.Limit, burst int) Middleware {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	get := func(name string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[name]
		if !ok {
			l = rate.NewLimiter(limit, burst)
			limiters[name] = l
		}
		return l
	}

	return func(ctx context.Context, occ *job.Occurrence, next Handler) error {
		if !get(occ.Name).Allow() {
			return ErrThrottled
		}
		return next(ctx)
	}
}

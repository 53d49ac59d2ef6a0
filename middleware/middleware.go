package middleware

import (
	"context"
	"sync"

	"github.com/xraph/bossbat/job"
)

// Handler continues the chain. The last Handler runs the job's work.
type Handler func(ctx context.Context) error

// Middleware wraps one occurrence. It sees the occurrence's private copy of
// the definition and decides whether, and with which context, to call next.
// Returning without calling next skips the work.
type Middleware func(ctx context.Context, occ *job.Occurrence, next Handler) error

// Chain composes middleware into one. The first middleware is the
// outermost wrapper:
//
//	Chain(a, b)(ctx, occ, work) runs a → b → work
//
// The terminal handler runs at most once per invocation; a repeated call
// returns the first result.
func Chain(mws ...Middleware) Middleware {
	mws = append([]Middleware(nil), mws...)
	return func(ctx context.Context, occ *job.Occurrence, next Handler) error {
		h := once(next)
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			inner := h
			h = func(ctx context.Context) error {
				return mw(ctx, occ, inner)
			}
		}
		return h(ctx)
	}
}

func once(h Handler) Handler {
	var (
		o   sync.Once
		err error
	)
	return func(ctx context.Context) error {
		o.Do(func() { err = h(ctx) })
		return err
	}
}

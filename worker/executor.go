// Package worker runs occurrences. The Executor decides, through the
// store's lock, whether this process runs a given occurrence; the Pool
// turns queued triggers into concurrent executions and re-arms recurring
// jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/bossbat"
	"github.com/xraph/bossbat/ext"
	"github.com/xraph/bossbat/id"
	"github.com/xraph/bossbat/job"
	"github.com/xraph/bossbat/keyspace"
	"github.com/xraph/bossbat/middleware"
	"github.com/xraph/bossbat/store"
)

// Executor runs one occurrence at most once across every process sharing
// the store.
type Executor struct {
	locker     store.Locker
	space      keyspace.Keyspace
	extensions *ext.Registry
	lockTTL    time.Duration
	workerID   id.WorkerID
	logger     *slog.Logger

	mu  sync.RWMutex
	mws []middleware.Middleware
}

// NewExecutor creates an Executor that holds locks for lockTTL.
func NewExecutor(
	locker store.Locker,
	space keyspace.Keyspace,
	extensions *ext.Registry,
	lockTTL time.Duration,
	workerID id.WorkerID,
	logger *slog.Logger,
	mws ...middleware.Middleware,
) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if extensions == nil {
		extensions = ext.NewRegistry(logger)
	}
	return &Executor{
		locker:     locker,
		space:      space,
		extensions: extensions,
		lockTTL:    lockTTL,
		workerID:   workerID,
		logger:     logger,
		mws:        append([]middleware.Middleware(nil), mws...),
	}
}

// Use appends middleware. Occurrences already running keep the chain they
// started with.
func (e *Executor) Use(mw middleware.Middleware) {
	e.mu.Lock()
	e.mws = append(e.mws, mw)
	e.mu.Unlock()
}

// WorkerID returns the identifier stamped on occurrences run here.
func (e *Executor) WorkerID() id.WorkerID { return e.workerID }

func (e *Executor) chain() middleware.Middleware {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return middleware.Chain(e.mws...)
}

// Execute tries the occurrence's lock once. Losing the lock returns nil
// and runs nothing. Otherwise the middleware chain and the work run with
// the lock held, and the lock is released once they return. The chain's
// error is reported to JobFailed hooks and returned.
func (e *Executor) Execute(ctx context.Context, def job.Definition, demand bool) error {
	lock, err := e.locker.Acquire(ctx, e.space.Lock(def.Name), e.lockTTL)
	if errors.Is(err, store.ErrLockNotAcquired) {
		e.logger.Debug("occurrence taken by another worker",
			slog.String("job_name", def.Name),
			slog.Bool("demand", demand),
		)
		e.extensions.EmitOccurrenceSkipped(ctx, def.Name, demand)
		return nil
	}
	if err != nil {
		e.logger.Error("lock acquire failed",
			slog.String("job_name", def.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("acquire lock for %s: %w", def.Name, err)
	}
	defer e.release(ctx, lock, def.Name)

	occ := job.NewOccurrence(e.workerID, def, demand)
	e.extensions.EmitJobStarted(ctx, occ)

	start := time.Now()
	runErr := e.run(job.WithOccurrence(ctx, occ), occ)
	elapsed := time.Since(start)

	if runErr != nil {
		e.logger.Debug("occurrence failed",
			slog.String("job_name", occ.Name),
			slog.String("occurrence_id", occ.ID.String()),
			slog.String("error", runErr.Error()),
		)
		e.extensions.EmitJobFailed(ctx, occ, runErr)
		return runErr
	}

	e.extensions.EmitJobCompleted(ctx, occ, elapsed)
	return nil
}

// run drives the chain. A panic that escapes it becomes an error so the
// lock is still released and hooks still fire.
func (e *Executor) run(ctx context.Context, occ *job.Occurrence) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job %s: %v", occ.Name, r)
		}
	}()

	// Middleware may swap the work on the occurrence's copy, so it is
	// looked up only when the chain reaches the end.
	return e.chain()(ctx, occ, func(ctx context.Context) error {
		if occ.Definition == nil || occ.Definition.Work == nil {
			return bossbat.ErrNoWork
		}
		return occ.Definition.Work(ctx)
	})
}

// release runs even when ctx is already cancelled.
func (e *Executor) release(ctx context.Context, lock store.Lock, name string) {
	if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
		e.logger.Warn("lock release failed",
			slog.String("job_name", name),
			slog.String("error", err.Error()),
		)
	}
}

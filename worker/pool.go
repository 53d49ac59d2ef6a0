package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/xraph/bossbat/job"
	"github.com/xraph/bossbat/notify"
)

// Armer re-arms the next occurrence of a recurring job.
type Armer interface {
	Arm(ctx context.Context, def job.Definition) (bool, error)
}

// Pool consumes triggers, runs each occurrence on its own goroutine, and
// re-arms recurring jobs.
type Pool struct {
	executor *Executor
	armer    Armer
	registry *job.Registry
	logger   *slog.Logger

	// sem bounds concurrent executions; nil means unbounded.
	sem chan struct{}

	wg       sync.WaitGroup
	inFlight atomic.Int64

	// execCtx is what executions run under; Wait cancels it on timeout.
	execCtx    context.Context
	cancelExec context.CancelFunc
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolConcurrency caps concurrent executions. Triggers beyond the cap
// wait for a slot. Zero means no cap.
func WithPoolConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.sem = make(chan struct{}, n)
		} else {
			p.sem = nil
		}
	}
}

// NewPool creates a Pool.
func NewPool(executor *Executor, armer Armer, registry *job.Registry, logger *slog.Logger, opts ...PoolOption) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	execCtx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		executor:   executor,
		armer:      armer,
		registry:   registry,
		logger:     logger,
		execCtx:    execCtx,
		cancelExec: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InFlight returns the number of executions and re-arms still running.
func (p *Pool) InFlight() int { return int(p.inFlight.Load()) }

// Run dispatches triggers until ctx is cancelled or the channel closes.
// Work started here outlives ctx; use Wait to drain it.
func (p *Pool) Run(ctx context.Context, triggers <-chan notify.Trigger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case tr, ok := <-triggers:
			if !ok {
				return nil
			}
			p.Dispatch(tr)
		}
	}
}

// Dispatch handles one trigger. Names with no registered job are ignored.
// The execution and the re-arm both run asynchronously; the re-arm
// happens whether or not this process wins the lock.
func (p *Pool) Dispatch(tr notify.Trigger) {
	def, ok := p.registry.Get(tr.Name)
	if !ok {
		p.logger.Debug("trigger for unknown job",
			slog.String("job_name", tr.Name),
			slog.Bool("demand", tr.Demand),
		)
		return
	}

	ctx := p.execCtx
	p.spawn(func() {
		if p.sem != nil {
			select {
			case p.sem <- struct{}{}:
				defer func() { <-p.sem }()
			case <-ctx.Done():
				return
			}
		}
		_ = p.executor.Execute(ctx, def, tr.Demand)
	})

	if def.Trigger.Recurring() {
		p.spawn(func() {
			if _, err := p.armer.Arm(ctx, def); err != nil {
				p.logger.Error("re-arm failed",
					slog.String("job_name", def.Name),
					slog.String("error", err.Error()),
				)
			}
		})
	}
}

func (p *Pool) spawn(fn func()) {
	p.wg.Add(1)
	p.inFlight.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Add(-1)
		fn()
	}()
}

// Wait blocks until in-flight work finishes. If ctx ends first, running
// work has its context cancelled, Wait still waits for it to return, and
// ctx's error is returned.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("shutdown timed out, cancelling in-flight occurrences",
			slog.Int("in_flight", p.InFlight()),
		)
		p.cancelExec()
		<-done
		return ctx.Err()
	}
}

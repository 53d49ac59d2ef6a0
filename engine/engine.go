package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gu "github.com/xraph/go-utils/metrics"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/bossbat"
	"github.com/xraph/bossbat/backoff"
	"github.com/xraph/bossbat/ext"
	"github.com/xraph/bossbat/id"
	"github.com/xraph/bossbat/job"
	"github.com/xraph/bossbat/keyspace"
	mw "github.com/xraph/bossbat/middleware"
	"github.com/xraph/bossbat/notify"
	"github.com/xraph/bossbat/observability"
	"github.com/xraph/bossbat/schedule"
	"github.com/xraph/bossbat/store"
	"github.com/xraph/bossbat/worker"
)

// instrumentationName scopes the engine's tracer and meter.
const instrumentationName = "github.com/xraph/bossbat"

// Engine is one member of a fleet sharing a store. Every member hires the
// same jobs; each occurrence runs on exactly one of them.
type Engine struct {
	store      store.Store
	config     bossbat.Config
	space      keyspace.Keyspace
	registry   *job.Registry
	extensions *ext.Registry
	scheduler  *schedule.Scheduler
	executor   *worker.Executor
	pool       *worker.Pool
	metrics    *observability.MetricsExtension
	logger     *slog.Logger

	// Set through options, consumed by New.
	exts          []ext.Extension
	mws           []mw.Middleware
	bo            backoff.Strategy
	now           func() time.Time
	concurrency   int
	metricFactory gu.MetricFactory

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	mu       sync.Mutex
	running  bool
	stopped  bool
	cancel   context.CancelFunc
	group    *errgroup.Group
	notifier *notify.Notifier
}

// New creates an Engine over s. Nothing listens until Start; Hire, Fire and
// Demand work before that.
func New(s store.Store, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, bossbat.ErrNoStore
	}

	eng := &Engine{
		store:  s,
		config: bossbat.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	cfg := eng.config
	if cfg.Prefix == "" {
		return nil, fmt.Errorf("bossbat: empty key prefix")
	}
	if cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("bossbat: lock ttl %v is not positive", cfg.LockTTL)
	}
	loc, err := schedule.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	eng.space = keyspace.New(cfg.Prefix)
	eng.registry = job.NewRegistry()
	eng.extensions = ext.NewRegistry(eng.logger)

	if eng.metricFactory == nil {
		eng.metricFactory = gu.NewMetricsCollector("bossbat/observability")
	}
	eng.metrics = observability.NewMetricsExtensionWithFactory(eng.metricFactory)
	eng.extensions.Register(eng.metrics)
	for _, e := range eng.exts {
		eng.extensions.Register(e)
	}

	schedOpts := []schedule.SchedulerOption{
		schedule.WithEmitter(eng.extensions),
		schedule.WithAttempts(cfg.ArmAttempts),
		schedule.WithLocation(loc),
	}
	if eng.bo != nil {
		schedOpts = append(schedOpts, schedule.WithBackoff(eng.bo))
	}
	if eng.now != nil {
		schedOpts = append(schedOpts, schedule.WithClock(eng.now))
	}
	eng.scheduler = schedule.NewScheduler(s, eng.space, eng.logger, schedOpts...)

	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer(instrumentationName))
	} else {
		tracingMw = mw.Tracing()
	}
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter(instrumentationName))
	} else {
		metricsMw = mw.Metrics()
	}

	// Built-ins wrap everything registered by the application.
	chain := []mw.Middleware{
		mw.Recover(eng.logger),
		tracingMw,
		metricsMw,
		mw.Logging(eng.logger),
	}
	chain = append(chain, eng.mws...)

	eng.executor = worker.NewExecutor(s, eng.space, eng.extensions, cfg.LockTTL, id.NewWorkerID(), eng.logger, chain...)
	eng.pool = worker.NewPool(eng.executor, eng.scheduler, eng.registry, eng.logger,
		worker.WithPoolConcurrency(eng.concurrency))

	return eng, nil
}

// ──────────────────────────────────────────────────
// Job operations
// ──────────────────────────────────────────────────

// Hire registers def, replacing any job of the same name, and arms its
// first occurrence if the trigger is recurring. An invalid definition is
// rejected before anything is registered. If arming fails the job stays
// registered and the error is returned.
func (eng *Engine) Hire(ctx context.Context, def job.Definition) error {
	if def.Name == "" {
		return bossbat.ErrEmptyName
	}
	if def.Work == nil {
		return fmt.Errorf("hire %s: %w", def.Name, bossbat.ErrNoWork)
	}
	if err := eng.scheduler.Validate(def.Trigger); err != nil {
		return fmt.Errorf("hire %s: %w", def.Name, err)
	}

	eng.registry.Put(*def.Clone())

	eng.logger.Info("job hired",
		slog.String("job_name", def.Name),
		slog.String("trigger", def.Trigger.Kind.String()),
	)

	if _, err := eng.scheduler.Arm(ctx, def); err != nil {
		return fmt.Errorf("hire %s: %w", def.Name, err)
	}
	return nil
}

// Fire deletes the pending trigger key for name. The job stays registered
// but no further recurring occurrences are armed until it is hired again
// or demanded. A missing key is not an error.
func (eng *Engine) Fire(ctx context.Context, name string) error {
	if err := eng.store.Del(ctx, eng.space.Trigger(name)); err != nil {
		return fmt.Errorf("fire %s: %w", name, err)
	}
	eng.logger.Info("job fired", slog.String("job_name", name))
	return nil
}

// Demand asks the fleet to run name once, as soon as possible, without
// touching its recurring schedule. The name need not be hired anywhere.
func (eng *Engine) Demand(ctx context.Context, name string) error {
	if name == "" {
		return bossbat.ErrEmptyName
	}
	if _, err := eng.scheduler.ArmDemand(ctx, name); err != nil {
		return fmt.Errorf("demand %s: %w", name, err)
	}
	return nil
}

// QA appends middleware to the pipeline every occurrence runs through.
func (eng *Engine) QA(m mw.Middleware) {
	eng.executor.Use(m)
}

// Jobs returns the names of hired jobs in sorted order.
func (eng *Engine) Jobs() []string { return eng.registry.Names() }

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Start subscribes to expirations and begins dispatching. It returns once
// the subscription is live.
func (eng *Engine) Start(ctx context.Context) error {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	if eng.running || eng.stopped {
		return bossbat.ErrAlreadyStarted
	}
	if err := eng.store.Ping(ctx); err != nil {
		return fmt.Errorf("bossbat: ping store: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(runCtx)
	n := notify.New(eng.store, eng.space, eng.logger, eng.config.QueueSize)

	g.Go(func() error { return n.Run(gctx) })
	g.Go(func() error { return eng.pool.Run(gctx, n.Triggers()) })

	select {
	case <-n.Ready():
	case <-gctx.Done():
		cancel()
		return fmt.Errorf("bossbat: start listener: %w", g.Wait())
	case <-ctx.Done():
		cancel()
		_ = g.Wait()
		return ctx.Err()
	}

	go func() {
		if err := g.Wait(); err != nil && runCtx.Err() == nil {
			eng.logger.Error("trigger listener stopped", slog.String("error", err.Error()))
		}
	}()

	eng.running = true
	eng.cancel = cancel
	eng.group = g
	eng.notifier = n

	eng.logger.Info("engine started",
		slog.String("worker_id", eng.executor.WorkerID().String()),
		slog.String("prefix", eng.config.Prefix),
	)
	return nil
}

// Stop stops listening, waits up to Config.ShutdownTimeout for in-flight
// occurrences, forgets every hired job, and closes the store. Keys already
// written stay in the store for the rest of the fleet.
func (eng *Engine) Stop(ctx context.Context) error {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	if !eng.running {
		return bossbat.ErrNotStarted
	}
	eng.running = false
	eng.stopped = true

	eng.logger.Info("engine stopping", slog.String("worker_id", eng.executor.WorkerID().String()))

	eng.cancel()
	var errs []error
	if err := eng.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, err)
	}

	waitCtx := ctx
	if eng.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, eng.config.ShutdownTimeout)
		defer cancel()
	}
	if err := eng.pool.Wait(waitCtx); err != nil {
		errs = append(errs, fmt.Errorf("bossbat: drain in-flight occurrences: %w", err))
	}

	eng.registry.Reset()
	eng.extensions.EmitShutdown(ctx)

	if err := eng.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("bossbat: close store: %w", err))
	}
	return errors.Join(errs...)
}

// ──────────────────────────────────────────────────
// Accessors
// ──────────────────────────────────────────────────

// Config returns the effective configuration.
func (eng *Engine) Config() bossbat.Config { return eng.config }

// WorkerID identifies this engine on occurrences it runs.
func (eng *Engine) WorkerID() id.WorkerID { return eng.executor.WorkerID() }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Registry returns the job registry.
func (eng *Engine) Registry() *job.Registry { return eng.registry }

// Scheduler returns the scheduler that arms trigger keys.
func (eng *Engine) Scheduler() *schedule.Scheduler { return eng.scheduler }

// Metrics returns the built-in lifecycle counters.
func (eng *Engine) Metrics() *observability.MetricsExtension { return eng.metrics }

// Keyspace returns the key naming used by this engine.
func (eng *Engine) Keyspace() keyspace.Keyspace { return eng.space }

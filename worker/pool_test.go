package worker_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/bossbat/ext"
	"github.com/xraph/bossbat/id"
	"github.com/xraph/bossbat/job"
	"github.com/xraph/bossbat/keyspace"
	"github.com/xraph/bossbat/notify"
	"github.com/xraph/bossbat/store/memory"
	"github.com/xraph/bossbat/worker"
)

// armerSpy records re-arms.
type armerSpy struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (a *armerSpy) Arm(_ context.Context, def job.Definition) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names = append(a.names, def.Name)
	return a.err == nil, a.err
}

func (a *armerSpy) armed() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.names...)
}

func setupTestPool(t *testing.T, opts ...worker.PoolOption) (*worker.Pool, *job.Registry, *armerSpy) {
	t.Helper()
	logger := slog.Default()
	executor := worker.NewExecutor(memory.New(), keyspace.New("bossbat"), ext.NewRegistry(logger),
		time.Second, id.NewWorkerID(), logger)
	reg := job.NewRegistry()
	armer := &armerSpy{}
	return worker.NewPool(executor, armer, reg, logger, opts...), reg, armer
}

func waitDone(t *testing.T, p *worker.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestPool_DispatchRunsAndRearms(t *testing.T) {
	pool, reg, armer := setupTestPool(t)

	var runs atomic.Int32
	reg.Put(job.Definition{Name: "report", Trigger: job.Every(1000), Work: func(context.Context) error {
		runs.Add(1)
		return nil
	}})

	pool.Dispatch(notify.Trigger{Name: "report"})
	waitDone(t, pool)

	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if got := armer.armed(); len(got) != 1 || got[0] != "report" {
		t.Errorf("armed = %v", got)
	}
}

func TestPool_DemandStillRearmsRecurring(t *testing.T) {
	pool, reg, armer := setupTestPool(t)
	reg.Put(job.Definition{Name: "report", Trigger: job.Cron("0 * * * *", ""), Work: func(context.Context) error { return nil }})

	pool.Dispatch(notify.Trigger{Name: "report", Demand: true})
	waitDone(t, pool)

	if got := armer.armed(); len(got) != 1 {
		t.Errorf("armed = %v, want one re-arm", got)
	}
}

func TestPool_ManualJobNotRearmed(t *testing.T) {
	pool, reg, armer := setupTestPool(t)

	var runs atomic.Int32
	reg.Put(job.Definition{Name: "adhoc", Trigger: job.Manual(), Work: func(context.Context) error {
		runs.Add(1)
		return nil
	}})

	pool.Dispatch(notify.Trigger{Name: "adhoc", Demand: true})
	waitDone(t, pool)

	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if got := armer.armed(); len(got) != 0 {
		t.Errorf("armed = %v, want none", got)
	}
}

func TestPool_UnknownJobIgnored(t *testing.T) {
	pool, _, armer := setupTestPool(t)

	pool.Dispatch(notify.Trigger{Name: "ghost"})
	waitDone(t, pool)

	if pool.InFlight() != 0 {
		t.Errorf("in flight = %d", pool.InFlight())
	}
	if got := armer.armed(); len(got) != 0 {
		t.Errorf("armed = %v", got)
	}
}

func TestPool_RearmFailureLogged(t *testing.T) {
	pool, reg, armer := setupTestPool(t)
	armer.err = errors.New("store down")
	reg.Put(job.Definition{Name: "report", Trigger: job.Every(1000), Work: func(context.Context) error { return nil }})

	pool.Dispatch(notify.Trigger{Name: "report"})
	waitDone(t, pool)

	if got := armer.armed(); len(got) != 1 {
		t.Errorf("armed = %v", got)
	}
}

func TestPool_RunConsumesUntilClosed(t *testing.T) {
	pool, reg, _ := setupTestPool(t)

	var runs atomic.Int32
	work := func(context.Context) error {
		runs.Add(1)
		return nil
	}
	reg.Put(job.Definition{Name: "a", Work: work})
	reg.Put(job.Definition{Name: "b", Work: work})

	triggers := make(chan notify.Trigger, 3)
	triggers <- notify.Trigger{Name: "a", Demand: true}
	triggers <- notify.Trigger{Name: "b", Demand: true}
	triggers <- notify.Trigger{Name: "nobody", Demand: true}
	close(triggers)

	if err := pool.Run(context.Background(), triggers); err != nil {
		t.Fatalf("Run: %v", err)
	}
	waitDone(t, pool)

	if runs.Load() != 2 {
		t.Errorf("runs = %d, want 2", runs.Load())
	}
}

func TestPool_RunStopsOnCancel(t *testing.T) {
	pool, _, _ := setupTestPool(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx, make(chan notify.Trigger)) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestPool_WaitTimeoutCancelsWork(t *testing.T) {
	pool, reg, _ := setupTestPool(t)

	started := make(chan struct{})
	reg.Put(job.Definition{Name: "slow", Work: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}})

	pool.Dispatch(notify.Trigger{Name: "slow", Demand: true})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want DeadlineExceeded", err)
	}
	if pool.InFlight() != 0 {
		t.Errorf("in flight = %d after Wait", pool.InFlight())
	}
}

func TestPool_ConcurrencyCap(t *testing.T) {
	pool, reg, _ := setupTestPool(t, worker.WithPoolConcurrency(1))

	var (
		current atomic.Int32
		peak    atomic.Int32
	)
	work := func(context.Context) error {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		current.Add(-1)
		return nil
	}
	for _, name := range []string{"a", "b", "c"} {
		reg.Put(job.Definition{Name: name, Work: work})
		pool.Dispatch(notify.Trigger{Name: name, Demand: true})
	}
	waitDone(t, pool)

	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
}

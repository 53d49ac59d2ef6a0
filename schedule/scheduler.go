package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/xraph/bossbat/backoff"
	"github.com/xraph/bossbat/job"
	"github.com/xraph/bossbat/keyspace"
	"github.com/xraph/bossbat/store"
)

// DemandDelay is the expiry given to demand keys.
const DemandDelay = time.Millisecond

// Emitter is told about occurrences this process armed.
// ext.Registry satisfies this interface via EmitOccurrenceArmed.
type Emitter interface {
	EmitOccurrenceArmed(ctx context.Context, name string, demand bool, delay time.Duration)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithEmitter sets the armed-occurrence emitter.
func WithEmitter(e Emitter) SchedulerOption {
	return func(s *Scheduler) { s.emitter = e }
}

// WithBackoff sets the delay strategy between arming attempts.
func WithBackoff(b backoff.Strategy) SchedulerOption {
	return func(s *Scheduler) { s.backoff = b }
}

// WithAttempts bounds arming attempts on store errors. Values below one
// mean a single attempt.
func WithAttempts(n int) SchedulerOption {
	return func(s *Scheduler) { s.attempts = n }
}

// WithLocation sets the timezone for cron triggers that name none.
func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) { s.defaultLoc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler computes occurrence delays and arms trigger keys.
type Scheduler struct {
	keys       store.KeyStore
	space      keyspace.Keyspace
	emitter    Emitter
	backoff    backoff.Strategy
	attempts   int
	defaultLoc *time.Location
	now        func() time.Time
	logger     *slog.Logger

	// parsed caches parsed cron expressions and loaded timezones.
	parsedMu sync.RWMutex
	parsed   map[string]cronlib.Schedule
	zones    map[string]*time.Location
}

// NewScheduler creates a Scheduler writing to keys under space.
func NewScheduler(keys store.KeyStore, space keyspace.Keyspace, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		keys:       keys,
		space:      space,
		backoff:    backoff.DefaultStrategy(),
		attempts:   3,
		defaultLoc: time.UTC,
		now:        time.Now,
		logger:     logger,
		parsed:     make(map[string]cronlib.Schedule),
		zones:      make(map[string]*time.Location),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.attempts < 1 {
		s.attempts = 1
	}
	return s
}

// Validate checks that t can be turned into delays.
func (s *Scheduler) Validate(t job.Trigger) error {
	switch t.Kind {
	case job.KindNone:
		return nil
	case job.KindInterval:
		_, err := ParseInterval(t.Every)
		return err
	case job.KindCron:
		if _, err := s.getOrParseSchedule(t.Expr); err != nil {
			return err
		}
		_, err := s.location(t.Timezone)
		return err
	default:
		return fmt.Errorf("schedule: unknown trigger kind %d", t.Kind)
	}
}

// Delay returns the time until the next occurrence of a recurring trigger.
func (s *Scheduler) Delay(t job.Trigger) (time.Duration, error) {
	switch t.Kind {
	case job.KindInterval:
		return ParseInterval(t.Every)
	case job.KindCron:
		return s.cronDelay(t)
	default:
		return 0, fmt.Errorf("schedule: trigger kind %s has no delay", t.Kind)
	}
}

func (s *Scheduler) cronDelay(t job.Trigger) (time.Duration, error) {
	sched, err := s.getOrParseSchedule(t.Expr)
	if err != nil {
		return 0, err
	}
	loc, err := s.location(t.Timezone)
	if err != nil {
		return 0, err
	}

	next := sched.Next(s.now().In(loc))
	delay := next.Sub(s.now())
	if delay <= 0 {
		// The clock passed the instant while computing it; take the
		// following one and use it as is.
		next = sched.Next(next)
		delay = next.Sub(s.now())
	}
	return delay, nil
}

// Arm writes the trigger key for a recurring definition. It reports whether
// this call created the key; false with a nil error means another process
// armed the occurrence first. Non-recurring definitions are left alone.
func (s *Scheduler) Arm(ctx context.Context, def job.Definition) (bool, error) {
	if !def.Trigger.Recurring() {
		return false, nil
	}
	return s.arm(ctx, s.space.Trigger(def.Name), def.Name, false, func() (time.Duration, error) {
		return s.Delay(def.Trigger)
	})
}

// ArmDemand writes the demand key for name with a near-zero expiry.
func (s *Scheduler) ArmDemand(ctx context.Context, name string) (bool, error) {
	return s.arm(ctx, s.space.Demand(name), name, true, func() (time.Duration, error) {
		return DemandDelay, nil
	})
}

// arm retries store errors only; the delay is recomputed for every attempt.
func (s *Scheduler) arm(ctx context.Context, key, name string, demand bool, delayFn func() (time.Duration, error)) (bool, error) {
	for attempt := 1; ; attempt++ {
		delay, err := delayFn()
		if err != nil {
			return false, err
		}

		created, err := s.keys.SetNX(ctx, key, name, delay)
		if err == nil {
			if created {
				s.logger.Debug("occurrence armed",
					slog.String("job_name", name),
					slog.Bool("demand", demand),
					slog.Duration("delay", delay),
				)
				if s.emitter != nil {
					s.emitter.EmitOccurrenceArmed(ctx, name, demand, delay)
				}
			}
			return created, nil
		}

		if attempt >= s.attempts {
			return false, fmt.Errorf("arm %s after %d attempts: %w", key, attempt, err)
		}

		wait := s.backoff.Delay(attempt)
		s.logger.Warn("arm failed, retrying",
			slog.String("job_name", name),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}

// getOrParseSchedule caches parsed cron expressions.
func (s *Scheduler) getOrParseSchedule(expr string) (cronlib.Schedule, error) {
	s.parsedMu.RLock()
	sched, ok := s.parsed[expr]
	s.parsedMu.RUnlock()
	if ok {
		return sched, nil
	}

	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}

	s.parsedMu.Lock()
	s.parsed[expr] = sched
	s.parsedMu.Unlock()
	return sched, nil
}

// location resolves a timezone name, falling back to the default zone.
func (s *Scheduler) location(name string) (*time.Location, error) {
	if name == "" {
		return s.defaultLoc, nil
	}

	s.parsedMu.RLock()
	loc, ok := s.zones[name]
	s.parsedMu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := LoadLocation(name)
	if err != nil {
		return nil, err
	}

	s.parsedMu.Lock()
	s.zones[name] = loc
	s.parsedMu.Unlock()
	return loc, nil
}

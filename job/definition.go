package job

import (
	"context"
	"maps"
)

// Kind enumerates trigger kinds.
type Kind int

const (
	// KindNone means the job only runs when demanded.
	KindNone Kind = iota
	// KindInterval re-arms the job a fixed interval after each occurrence.
	KindInterval
	// KindCron re-arms the job at the next instant matching a cron expression.
	KindCron
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInterval:
		return "interval"
	case KindCron:
		return "cron"
	default:
		return "none"
	}
}

// Trigger describes when occurrences of a job are armed.
type Trigger struct {
	Kind Kind

	// Every is the interval value for KindInterval. Integer kinds are
	// milliseconds, time.Duration is used as is, and strings are parsed as
	// human-readable durations. Anything else is rejected at hire time.
	Every any

	// Expr is the cron expression for KindCron.
	Expr string

	// Timezone is the IANA zone Expr is evaluated in. Empty means the
	// engine default.
	Timezone string
}

// Every returns an interval trigger.
func Every(v any) Trigger {
	return Trigger{Kind: KindInterval, Every: v}
}

// Cron returns a cron trigger evaluated in the named timezone.
func Cron(expr, timezone string) Trigger {
	return Trigger{Kind: KindCron, Expr: expr, Timezone: timezone}
}

// Manual returns a trigger that never arms on its own.
func Manual() Trigger { return Trigger{Kind: KindNone} }

// Recurring reports whether the trigger re-arms after each occurrence.
func (t Trigger) Recurring() bool {
	return t.Kind == KindInterval || t.Kind == KindCron
}

// WorkFunc is the job body. A nil return is success.
type WorkFunc func(ctx context.Context) error

// Definition is a named job: its trigger and its work.
type Definition struct {
	// Name is the unique key within a registry and the suffix of every
	// store key written for this job.
	Name string

	// Trigger decides when occurrences are armed.
	Trigger Trigger

	// Work runs once per occurrence, on the process that wins the lock.
	Work WorkFunc

	// Metadata holds free-form labels. Middleware may read or change them
	// on an occurrence's copy.
	Metadata map[string]string
}

// Clone returns a copy of d that shares no mutable state with it.
func (d Definition) Clone() *Definition {
	cp := d
	if d.Metadata != nil {
		cp.Metadata = maps.Clone(d.Metadata)
	}
	return &cp
}

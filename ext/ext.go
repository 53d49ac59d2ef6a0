package ext

import (
	"context"
	"time"

	"github.com/xraph/bossbat/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Trigger hooks
// ──────────────────────────────────────────────────

// OccurrenceArmed is called after this process wrote a trigger or demand
// key. Losing the conditional write to another process does not emit.
type OccurrenceArmed interface {
	OnOccurrenceArmed(ctx context.Context, name string, demand bool, delay time.Duration) error
}

// OccurrenceSkipped is called when another process holds the lock for an
// occurrence this process was notified of.
type OccurrenceSkipped interface {
	OnOccurrenceSkipped(ctx context.Context, name string, demand bool) error
}

// ──────────────────────────────────────────────────
// Execution hooks
// ──────────────────────────────────────────────────

// JobStarted is called once the lock is held, before the middleware chain.
type JobStarted interface {
	OnJobStarted(ctx context.Context, occ *job.Occurrence) error
}

// JobCompleted is called after the chain returned nil.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, occ *job.Occurrence, elapsed time.Duration) error
}

// JobFailed is called after the chain returned an error. Failed
// occurrences are never retried; this is the only place they surface.
type JobFailed interface {
	OnJobFailed(ctx context.Context, occ *job.Occurrence, err error) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}

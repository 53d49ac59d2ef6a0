package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/bossbat/job"
)

// Each entry pairs a hook with the extension name captured at
// registration, so emitters never assert back to Extension.
type armedEntry struct {
	name string
	hook OccurrenceArmed
}

type skippedEntry struct {
	name string
	hook OccurrenceSkipped
}

type startedEntry struct {
	name string
	hook JobStarted
}

type completedEntry struct {
	name string
	hook JobCompleted
}

type failedEntry struct {
	name string
	hook JobFailed
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and fans lifecycle events out to
// them. Register everything before the engine starts; emitters read the
// caches without locking.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	armed     []armedEntry
	skipped   []skippedEntry
	started   []startedEntry
	completed []completedEntry
	failed    []failedEntry
	shutdown  []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and caches every hook it implements.
// Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(OccurrenceArmed); ok {
		r.armed = append(r.armed, armedEntry{name, h})
	}
	if h, ok := e.(OccurrenceSkipped); ok {
		r.skipped = append(r.skipped, skippedEntry{name, h})
	}
	if h, ok := e.(JobStarted); ok {
		r.started = append(r.started, startedEntry{name, h})
	}
	if h, ok := e.(JobCompleted); ok {
		r.completed = append(r.completed, completedEntry{name, h})
	}
	if h, ok := e.(JobFailed); ok {
		r.failed = append(r.failed, failedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Emitters
// ──────────────────────────────────────────────────

// EmitOccurrenceArmed notifies all extensions that implement OccurrenceArmed.
func (r *Registry) EmitOccurrenceArmed(ctx context.Context, name string, demand bool, delay time.Duration) {
	for _, e := range r.armed {
		if err := e.hook.OnOccurrenceArmed(ctx, name, demand, delay); err != nil {
			r.logHookError("OnOccurrenceArmed", e.name, err)
		}
	}
}

// EmitOccurrenceSkipped notifies all extensions that implement OccurrenceSkipped.
func (r *Registry) EmitOccurrenceSkipped(ctx context.Context, name string, demand bool) {
	for _, e := range r.skipped {
		if err := e.hook.OnOccurrenceSkipped(ctx, name, demand); err != nil {
			r.logHookError("OnOccurrenceSkipped", e.name, err)
		}
	}
}

// EmitJobStarted notifies all extensions that implement JobStarted.
func (r *Registry) EmitJobStarted(ctx context.Context, occ *job.Occurrence) {
	for _, e := range r.started {
		if err := e.hook.OnJobStarted(ctx, occ); err != nil {
			r.logHookError("OnJobStarted", e.name, err)
		}
	}
}

// EmitJobCompleted notifies all extensions that implement JobCompleted.
func (r *Registry) EmitJobCompleted(ctx context.Context, occ *job.Occurrence, elapsed time.Duration) {
	for _, e := range r.completed {
		if err := e.hook.OnJobCompleted(ctx, occ, elapsed); err != nil {
			r.logHookError("OnJobCompleted", e.name, err)
		}
	}
}

// EmitJobFailed notifies all extensions that implement JobFailed.
func (r *Registry) EmitJobFailed(ctx context.Context, occ *job.Occurrence, jobErr error) {
	for _, e := range r.failed {
		if err := e.hook.OnJobFailed(ctx, occ, jobErr); err != nil {
			r.logHookError("OnJobFailed", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs hook failures; they never reach the caller.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}

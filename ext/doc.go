// Package ext defines the extension system for bossbat.
//
// Extensions observe occurrences as they are armed, skipped, run, and
// settled. Each hook is a separate interface so an extension implements
// only the events it cares about.
//
//	type alerts struct{}
//
//	func (alerts) Name() string { return "alerts" }
//
//	func (alerts) OnJobFailed(ctx context.Context, occ *job.Occurrence, err error) error {
//	    return page(occ.Name, err)
//	}
//
// Hooks:
//
//   - [OccurrenceArmed]: this process wrote a trigger or demand key
//   - [OccurrenceSkipped]: another process held the lock
//   - [JobStarted]: the lock is held and the chain is about to run
//   - [JobCompleted]: the chain returned nil
//   - [JobFailed]: the chain returned an error
//   - [Shutdown]: the engine is stopping
//
// Hook errors are logged by the [Registry] and otherwise ignored.
package ext

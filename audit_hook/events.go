package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionOccurrenceArmed   = "occurrence.armed"
	ActionOccurrenceSkipped = "occurrence.skipped"
	ActionJobStarted        = "job.started"
	ActionJobCompleted      = "job.completed"
	ActionJobFailed         = "job.failed"
)

// Audit event categories group related actions.
const (
	CategoryOccurrence = "bossbat.occurrence"
	CategoryJob        = "bossbat.job"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceJob        = "job"
	ResourceOccurrence = "occurrence"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionOccurrenceArmed,
		ActionOccurrenceSkipped,
		ActionJobStarted,
		ActionJobCompleted,
		ActionJobFailed,
	}
}

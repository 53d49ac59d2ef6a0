package bossbat

import "time"

// Config holds configuration for an engine.
type Config struct {
	// Prefix namespaces every key this system writes. Processes that share
	// a schedule must use the same prefix.
	Prefix string

	// LockTTL is how long the per-occurrence lock is held at most. It is
	// never renewed; it only dedupes the current occurrence across
	// processes.
	LockTTL time.Duration

	// Timezone is the IANA zone cron triggers are evaluated in when a job
	// does not name its own.
	Timezone string

	// ArmAttempts bounds how many times arming is attempted when the store
	// returns an error. A lost set-if-absent race is never retried.
	ArmAttempts int

	// QueueSize is the buffer between the trigger notifier and the
	// dispatch loop.
	QueueSize int

	// ShutdownTimeout is the maximum time Stop waits for in-flight work.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:          "bossbat",
		LockTTL:         2 * time.Second,
		Timezone:        "UTC",
		ArmAttempts:     3,
		QueueSize:       256,
		ShutdownTimeout: 30 * time.Second,
	}
}

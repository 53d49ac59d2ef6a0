package bossbat

import "errors"

var (
	// Store errors.
	ErrNoStore     = errors.New("bossbat: no store configured")
	ErrStoreClosed = errors.New("bossbat: store closed")

	// Configuration errors.
	ErrEmptyName       = errors.New("bossbat: job name is empty")
	ErrInvalidInterval = errors.New("bossbat: invalid interval")
	ErrInvalidCron     = errors.New("bossbat: invalid cron expression")
	ErrInvalidTimezone = errors.New("bossbat: unknown timezone")
	ErrNoWork          = errors.New("bossbat: job has no work function")

	// Lifecycle errors.
	ErrAlreadyStarted = errors.New("bossbat: engine already started")
	ErrNotStarted     = errors.New("bossbat: engine not started")
)

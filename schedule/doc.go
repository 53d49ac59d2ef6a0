// Package schedule implements the arming side of the trigger protocol:
// computing the delay until a job's next occurrence and writing the trigger
// key with a set-if-absent, so that many processes re-arming after the same
// expiration converge on a single timer.
//
// # Delays
//
// Interval triggers accept integer milliseconds, a time.Duration, or a
// human-readable string ("200 ms", "1h30m", "2d"). Cron triggers accept the
// standard five fields, an optional leading seconds field, and descriptors
// such as "@hourly" or "@every 30s", evaluated in the trigger's timezone.
//
// A cron delay can come out non-positive when the clock moves past the
// computed instant before the delay is taken. In that case the following
// occurrence is used once, without further checks.
//
// # Arming
//
// [Scheduler.Arm] writes the trigger key with the computed delay as its
// expiry. Losing the set-if-absent race is the normal outcome when several
// processes re-arm at once and is not retried. Store errors are retried with
// a backoff strategy up to a bounded number of attempts.
package schedule

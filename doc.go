// Package bossbat runs named jobs across a fleet of equivalent worker
// processes so that every scheduled or demanded occurrence executes exactly
// once.
//
// A shared TTL key store acts as the distributed timer. Each recurring job
// has a single trigger key whose expiry is the delay until its next
// occurrence. When the key expires every process hears about it; each one
// tries to re-arm the next occurrence with a set-if-absent write (exactly one
// succeeds) and tries to take a short-lived lock for the current one (exactly
// one wins and runs the work).
//
// # Quick Start
//
//	s, err := redisstore.New(ctx, client)
//	eng, err := engine.New(s, engine.WithLogger(logger))
//
//	err = eng.Hire(ctx, job.Definition{
//	    Name:    "daily-report",
//	    Trigger: job.Cron("0 9 * * *", "Europe/Helsinki"),
//	    Work:    generateReport,
//	})
//	err = eng.Start(ctx)
//
// # Architecture
//
// The root package holds configuration and sentinel errors. The store
// package defines the key store, expiry feed, and lock contracts that the
// redis and memory backends implement. The engine package wires the job
// registry, the scheduling protocol, the trigger notifier, and the
// mutual-exclusion executor together.
package bossbat

// Package job defines job definitions, their triggers, and the
// process-local registry that maps job names to definitions.
//
// # Triggers
//
// A [Trigger] says when occurrences of a job are armed:
//
//	job.Every(30 * time.Second)          // fixed interval
//	job.Every("200 ms")                  // human-readable interval
//	job.Every(1000)                      // integer milliseconds
//	job.Cron("0 9 * * 1-5", "UTC")       // cron expression in a timezone
//	job.Manual()                         // only runs when demanded
//
// # Registry
//
// Every worker process keeps its own [Registry]. Definitions are never
// shared through the store; a process only takes part in a job's execution
// race after hiring the same job name locally. Re-hiring a name replaces the
// previous definition wholesale.
//
// # Occurrences
//
// An [Occurrence] is handed to the middleware chain for each execution a
// process wins. It carries a clone of the registered definition, so
// middleware may mutate it without affecting later occurrences.
package job

// Package engine wires the store, scheduler, notifier, and worker pool into
// one member of a job fleet.
//
// Every process in the fleet builds an Engine over the same store and
// prefix and hires the same jobs. Each occurrence runs on exactly one of
// them.
//
// # Building an Engine
//
//	s, err := redis.New(ctx, client)
//	eng, err := engine.New(s,
//	    engine.WithPrefix("billing"),
//	    engine.WithLockTTL(5*time.Second),
//	    engine.WithExtension(alerts),
//	)
//
// # Hiring Work
//
//	eng.Hire(ctx, job.Definition{
//	    Name:    "invoice-run",
//	    Trigger: job.Cron("0 6 * * *", "Europe/London"),
//	    Work:    runInvoices,
//	})
//
//	eng.Hire(ctx, job.Definition{
//	    Name:    "heartbeat",
//	    Trigger: job.Every("30 s"),
//	    Work:    beat,
//	})
//
// # Operations
//
//   - [Engine.Hire]: register a job and arm its first occurrence
//   - [Engine.Fire]: drop the pending occurrence; the job stays registered
//   - [Engine.Demand]: run a job once, soon, on one member of the fleet
//   - [Engine.QA]: append middleware to the pipeline
//   - [Engine.Start], [Engine.Stop]: listen for expirations, and stop
//
// # Options
//
//   - [WithConfig], [WithPrefix], [WithLockTTL], [WithTimezone], [WithShutdownTimeout]
//   - [WithLogger], [WithClock], [WithBackoff], [WithConcurrency]
//   - [WithMiddleware], [WithExtension]
//   - [WithTracerProvider], [WithMeterProvider], [WithMetricFactory]
package engine

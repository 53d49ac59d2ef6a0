// Package observability provides a metrics extension that counts
// occurrences as they are armed, skipped, started, and settled.
//
// For per-occurrence spans and latency histograms, see middleware.Tracing
// and middleware.Metrics.
package observability

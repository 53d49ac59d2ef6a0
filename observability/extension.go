package observability

import (
	"context"
	"time"

	gu "github.com/xraph/go-utils/metrics"

	"github.com/xraph/bossbat/ext"
	"github.com/xraph/bossbat/job"
)

// Compile-time interface checks.
var (
	_ ext.Extension         = (*MetricsExtension)(nil)
	_ ext.OccurrenceArmed   = (*MetricsExtension)(nil)
	_ ext.OccurrenceSkipped = (*MetricsExtension)(nil)
	_ ext.JobStarted        = (*MetricsExtension)(nil)
	_ ext.JobCompleted      = (*MetricsExtension)(nil)
	_ ext.JobFailed         = (*MetricsExtension)(nil)
)

// MetricsExtension counts occurrences through their lifecycle via a
// go-utils MetricFactory. Summed across a fleet, Started equals the number
// of occurrences that fired.
type MetricsExtension struct {
	Armed       gu.Counter
	DemandArmed gu.Counter
	Skipped     gu.Counter
	Started     gu.Counter
	Completed   gu.Counter
	Failed      gu.Counter
}

// NewMetricsExtension creates a MetricsExtension using a default metrics collector.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithFactory(gu.NewMetricsCollector("bossbat/observability"))
}

// NewMetricsExtensionWithFactory creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtensionWithFactory(factory gu.MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		Armed:       factory.Counter("bossbat.occurrence.armed"),
		DemandArmed: factory.Counter("bossbat.occurrence.demand_armed"),
		Skipped:     factory.Counter("bossbat.occurrence.skipped"),
		Started:     factory.Counter("bossbat.job.started"),
		Completed:   factory.Counter("bossbat.job.completed"),
		Failed:      factory.Counter("bossbat.job.failed"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Trigger hooks ───────────────────────────────────

// OnOccurrenceArmed implements ext.OccurrenceArmed.
func (m *MetricsExtension) OnOccurrenceArmed(_ context.Context, _ string, demand bool, _ time.Duration) error {
	if demand {
		m.DemandArmed.Inc()
	} else {
		m.Armed.Inc()
	}
	return nil
}

// OnOccurrenceSkipped implements ext.OccurrenceSkipped.
func (m *MetricsExtension) OnOccurrenceSkipped(_ context.Context, _ string, _ bool) error {
	m.Skipped.Inc()
	return nil
}

// ── Execution hooks ─────────────────────────────────

// OnJobStarted implements ext.JobStarted.
func (m *MetricsExtension) OnJobStarted(_ context.Context, _ *job.Occurrence) error {
	m.Started.Inc()
	return nil
}

// OnJobCompleted implements ext.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(_ context.Context, _ *job.Occurrence, _ time.Duration) error {
	m.Completed.Inc()
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (m *MetricsExtension) OnJobFailed(_ context.Context, _ *job.Occurrence, _ error) error {
	m.Failed.Inc()
	return nil
}

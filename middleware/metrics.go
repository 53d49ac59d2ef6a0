package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/bossbat/job"
)

// Outcome values recorded by Metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeThrottled = "throttled"
)

// Metrics records occurrences on the global MeterProvider.
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(scopeName))
}

// MetricsWithMeter records two instruments on meter, labelled with job,
// trigger, demand and outcome:
//
//	bossbat.occurrence.duration  histogram, seconds spent in the rest of the chain
//	bossbat.occurrence.runs      counter
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Failed instrument creation still yields usable noop instruments.
	duration, _ := meter.Float64Histogram("bossbat.occurrence.duration",
		metric.WithDescription("Time spent running an occurrence"),
		metric.WithUnit("s"),
	)
	runs, _ := meter.Int64Counter("bossbat.occurrence.runs",
		metric.WithDescription("Occurrences that reached this process's pipeline"),
		metric.WithUnit("{occurrence}"),
	)

	return func(ctx context.Context, occ *job.Occurrence, next Handler) error {
		start := time.Now()
		err := next(ctx)

		set := metric.WithAttributeSet(attribute.NewSet(
			attribute.String("job", occ.Name),
			attribute.String("trigger", triggerKind(occ)),
			attribute.Bool("demand", occ.Demand),
			attribute.String("outcome", outcome(err)),
		))
		duration.Record(ctx, time.Since(start).Seconds(), set)
		runs.Add(ctx, 1, set)
		return err
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrThrottled):
		return OutcomeThrottled
	default:
		return OutcomeFailure
	}
}

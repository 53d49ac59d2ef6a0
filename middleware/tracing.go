package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/bossbat/job"
)

// scopeName is the instrumentation scope of the global tracer and meter.
const scopeName = "github.com/xraph/bossbat/middleware"

// SpanName is the name of the span Tracing opens per occurrence.
const SpanName = "bossbat.occurrence"

// Tracing opens a span per occurrence on the global TracerProvider.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(scopeName))
}

// TracingWithTracer opens a span per occurrence on tracer. The span carries
// the job, occurrence, worker, trigger kind and demand flag. A throttled
// occurrence is marked with a "throttled" event rather than an error;
// success leaves the status unset.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, occ *job.Occurrence, next Handler) error {
		ctx, span := tracer.Start(ctx, SpanName,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(occurrenceAttrs(occ)...),
		)
		defer span.End()

		err := next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrThrottled):
			span.AddEvent("throttled")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

func occurrenceAttrs(occ *job.Occurrence) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("bossbat.job", occ.Name),
		attribute.String("bossbat.occurrence", occ.ID.String()),
		attribute.String("bossbat.worker", occ.WorkerID.String()),
		attribute.String("bossbat.trigger", triggerKind(occ)),
		attribute.Bool("bossbat.demand", occ.Demand),
	}
}

func triggerKind(occ *job.Occurrence) string {
	if occ.Definition == nil {
		return job.KindNone.String()
	}
	return occ.Definition.Trigger.Kind.String()
}

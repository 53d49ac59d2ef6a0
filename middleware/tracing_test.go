package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	mw "github.com/xraph/bossbat/middleware"
)

func setupTestTracer() (*tracetest.SpanRecorder, trace.Tracer) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, tp.Tracer("test")
}

// runTraced runs one occurrence through the tracing middleware and returns
// its single ended span.
func runTraced(t *testing.T, handler mw.Handler) (sdktrace.ReadOnlySpan, error) {
	t.Helper()
	sr, tracer := setupTestTracer()
	err := mw.TracingWithTracer(tracer)(context.Background(), newTestOccurrence(), handler)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	return spans[0], err
}

func TestTracing_SpanNameAndAttributes(t *testing.T) {
	sr, tracer := setupTestTracer()
	occ := newTestOccurrence()

	if err := mw.TracingWithTracer(tracer)(context.Background(), occ, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != mw.SpanName {
		t.Errorf("span name = %q, want %q", spans[0].Name(), mw.SpanName)
	}

	got := make(map[string]any)
	for _, a := range spans[0].Attributes() {
		switch a.Value.Type() {
		case attribute.STRING:
			got[string(a.Key)] = a.Value.AsString()
		case attribute.BOOL:
			got[string(a.Key)] = a.Value.AsBool()
		}
	}
	want := map[string]any{
		"bossbat.job":        "send-digest",
		"bossbat.occurrence": occ.ID.String(),
		"bossbat.worker":     occ.WorkerID.String(),
		"bossbat.trigger":    "interval",
		"bossbat.demand":     true,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attribute %q = %v, want %v", k, got[k], v)
		}
	}
}

func TestTracing_SuccessLeavesStatusUnset(t *testing.T) {
	span, err := runTraced(t, func(context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if span.Status().Code != codes.Unset {
		t.Errorf("status = %v, want Unset", span.Status().Code)
	}
}

func TestTracing_FailureRecordsError(t *testing.T) {
	boom := errors.New("handler failed")
	span, err := runTraced(t, func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want handler error", err)
	}
	if span.Status().Code != codes.Error || span.Status().Description != "handler failed" {
		t.Errorf("status = %+v", span.Status())
	}

	found := false
	for _, ev := range span.Events() {
		if ev.Name == "exception" {
			found = true
		}
	}
	if !found {
		t.Error("expected an exception event on the span")
	}
}

func TestTracing_ThrottledIsNotAnError(t *testing.T) {
	span, err := runTraced(t, func(context.Context) error { return mw.ErrThrottled })
	if !errors.Is(err, mw.ErrThrottled) {
		t.Fatalf("err = %v, want ErrThrottled", err)
	}
	if span.Status().Code != codes.Unset {
		t.Errorf("status = %v, want Unset", span.Status().Code)
	}
	events := span.Events()
	if len(events) != 1 || events[0].Name != "throttled" {
		t.Errorf("events = %v, want one throttled event", events)
	}
}

func TestTracing_PropagatesContext(t *testing.T) {
	var inner trace.SpanContext
	span, _ := runTraced(t, func(ctx context.Context) error {
		inner = trace.SpanFromContext(ctx).SpanContext()
		return nil
	})
	if !inner.IsValid() || inner.SpanID() != span.SpanContext().SpanID() {
		t.Error("handler did not run inside the occurrence span")
	}
}

func TestTracing_DefaultNoopSafe(t *testing.T) {
	called := false
	err := mw.Tracing()(context.Background(), newTestOccurrence(), func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("err = %v, called = %v", err, called)
	}
}

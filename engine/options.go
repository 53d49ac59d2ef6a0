package engine

import (
	"log/slog"
	"time"

	gu "github.com/xraph/go-utils/metrics"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/bossbat"
	"github.com/xraph/bossbat/backoff"
	"github.com/xraph/bossbat/ext"
	mw "github.com/xraph/bossbat/middleware"
)

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the whole configuration. Options applied after it
// still override single fields.
func WithConfig(cfg bossbat.Config) Option {
	return func(eng *Engine) { eng.config = cfg }
}

// WithPrefix sets the key namespace shared by the fleet.
func WithPrefix(prefix string) Option {
	return func(eng *Engine) { eng.config.Prefix = prefix }
}

// WithLockTTL sets how long an occurrence lock is held at most.
func WithLockTTL(d time.Duration) Option {
	return func(eng *Engine) { eng.config.LockTTL = d }
}

// WithTimezone sets the default zone for cron triggers.
func WithTimezone(name string) Option {
	return func(eng *Engine) { eng.config.Timezone = name }
}

// WithShutdownTimeout bounds how long Stop waits for in-flight work.
func WithShutdownTimeout(d time.Duration) Option {
	return func(eng *Engine) { eng.config.ShutdownTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(eng *Engine) {
		if l != nil {
			eng.logger = l
		}
	}
}

// WithMiddleware appends middleware, as QA does after construction.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) { eng.mws = append(eng.mws, m) }
}

// WithExtension registers a lifecycle extension.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) { eng.exts = append(eng.exts, e) }
}

// WithBackoff sets the wait between arming attempts after store errors.
// If not set, backoff.DefaultStrategy() is used.
func WithBackoff(b backoff.Strategy) Option {
	return func(eng *Engine) { eng.bo = b }
}

// WithConcurrency caps concurrent occurrences in this process. Zero, the
// default, means no cap.
func WithConcurrency(n int) Option {
	return func(eng *Engine) { eng.concurrency = n }
}

// WithClock replaces time.Now for delay computation.
func WithClock(now func() time.Time) Option {
	return func(eng *Engine) { eng.now = now }
}

// WithTracerProvider sets a custom OTel TracerProvider for the tracing
// middleware. If not set, the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) { eng.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the metrics
// middleware. If not set, the global provider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) { eng.meterProvider = mp }
}

// WithMetricFactory sets the go-utils factory backing the lifecycle
// counters returned by Engine.Metrics.
func WithMetricFactory(f gu.MetricFactory) Option {
	return func(eng *Engine) { eng.metricFactory = f }
}

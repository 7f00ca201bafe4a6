// Package observability wires OpenTelemetry tracing and metrics around catalog
// writes, plus Server-Timing entries for HTTP responses.
//
// Nothing is exported unless the host installs real providers with
// otel.SetTracerProvider / otel.SetMeterProvider; the globals default to no-ops.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/diewo77/go-commandes"

// Attribute keys.
const (
	AttrOperation = "catalog.operation"
	AttrAttempt   = "catalog.sync.attempt"
	AttrOutcome   = "catalog.sync.outcome"
)

// Sync outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRetried  = "retried"
	OutcomeReloaded = "reloaded"
	OutcomeFailed   = "failed"
)

// Instruments bundles the tracer and metric instruments used by the catalog.
type Instruments struct {
	tracer       trace.Tracer
	syncDuration metric.Float64Histogram
	syncCount    metric.Int64Counter
	reloadCount  metric.Int64Counter
}

// New builds instruments from the given providers. Nil providers fall back to
// the otel globals.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Instruments {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)
	in := &Instruments{tracer: tp.Tracer(instrumentationName)}

	var err error
	in.syncDuration, err = meter.Float64Histogram(
		"catalog.sync.duration",
		metric.WithDescription("Duration of remote catalog writes in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		in.syncDuration, _ = meter.Float64Histogram("catalog.sync.duration")
	}
	in.syncCount, err = meter.Int64Counter(
		"catalog.sync.count",
		metric.WithDescription("Remote catalog writes by outcome"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		in.syncCount, _ = meter.Int64Counter("catalog.sync.count")
	}
	in.reloadCount, err = meter.Int64Counter(
		"catalog.reload.count",
		metric.WithDescription("Full catalog reloads"),
		metric.WithUnit("{reload}"),
	)
	if err != nil {
		in.reloadCount, _ = meter.Int64Counter("catalog.reload.count")
	}
	return in
}

// Default returns instruments bound to the otel globals.
func Default() *Instruments { return New(nil, nil) }

// StartSync opens a span for one catalog operation.
func (in *Instruments) StartSync(ctx context.Context, op string) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, "catalog."+op, trace.WithAttributes(attribute.String(AttrOperation, op)))
}

// RecordSync records the duration and outcome of one operation.
func (in *Instruments) RecordSync(ctx context.Context, op, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrOperation, op),
		attribute.String(AttrOutcome, outcome),
	)
	in.syncDuration.Record(ctx, float64(d.Microseconds())/1000, attrs)
	in.syncCount.Add(ctx, 1, attrs)
}

// RecordReload counts a full reload.
func (in *Instruments) RecordReload(ctx context.Context, ok bool) {
	in.reloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", ok)))
}

// AttemptFailed adds a "sync.attempt_failed" event to span.
func AttemptFailed(span trace.Span, attempt int, err error) {
	span.AddEvent("sync.attempt_failed", trace.WithAttributes(
		attribute.Int(AttrAttempt, attempt),
		attribute.String("error", err.Error()),
	))
}

// EndSpan closes span, marking it failed when err is set.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RequestMeta identifies one logical request for telemetry purposes. A
// logical request may span several physical sends; they all share one
// RequestMeta.
type RequestMeta struct {
	ID     string // unique logical-request ID
	Method string // HTTP method
	Path   string // request path
}

// SpanName returns the deterministic span name for this request.
// Format: api.request.<METHOD> <path>
func (m RequestMeta) SpanName() string {
	return "api.request." + m.Method + " " + m.Path
}

// Tracer wraps OpenTelemetry tracing with one span per logical request and
// an event per physical attempt.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts the span covering a whole logical request.
	StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span)

	// AddAttempt records one physical send as a span event.
	AddAttempt(span trace.Span, attempt int, kind string, wait time.Duration)

	// EndSpan ends the span, recording the final error if any.
	EndSpan(span trace.Span, attempts int, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with request metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(
			attribute.String("request.id", meta.ID),
			attribute.String("http.method", meta.Method),
			attribute.String("http.path", meta.Path),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	return ctx, span
}

// AddAttempt records one physical send and its classified outcome.
func (t *tracerImpl) AddAttempt(span trace.Span, attempt int, kind string, wait time.Duration) {
	span.AddEvent("attempt", trace.WithAttributes(
		attribute.Int("attempt", attempt),
		attribute.String("outcome", kind),
		attribute.String("wait", wait.String()),
	))
}

// EndSpan ends the span and records the final status.
func (t *tracerImpl) EndSpan(span trace.Span, attempts int, err error) {
	span.SetAttributes(attribute.Int("request.attempts", attempts))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) AddAttempt(span trace.Span, attempt int, kind string, wait time.Duration) {}

func (t *noopTracer) EndSpan(span trace.Span, attempts int, err error) {
	span.End()
}

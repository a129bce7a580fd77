package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records resilience-layer metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordSend records one physical send and its classified outcome kind.
	RecordSend(ctx context.Context, meta RequestMeta, kind string)

	// RecordOutcome records the final outcome of a logical request.
	RecordOutcome(ctx context.Context, meta RequestMeta, kind string, attempts int, duration time.Duration)

	// RecordThrottleDelay records time spent waiting on budget admission.
	RecordThrottleDelay(ctx context.Context, delay time.Duration)

	// RecordRefresh records a credential refresh and whether it succeeded.
	RecordRefresh(ctx context.Context, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	sends        metric.Int64Counter
	outcomes     metric.Int64Counter
	refreshes    metric.Int64Counter
	throttleMs   metric.Float64Histogram
	durationHist metric.Float64Histogram
}

// newMetrics creates the instrument set on the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	sends, err := meter.Int64Counter(
		"api.sends.total",
		metric.WithDescription("Physical sends, by classified outcome kind"),
		metric.WithUnit("{send}"),
	)
	if err != nil {
		return nil, err
	}

	outcomes, err := meter.Int64Counter(
		"api.requests.total",
		metric.WithDescription("Logical requests, by final outcome kind"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	refreshes, err := meter.Int64Counter(
		"api.refreshes.total",
		metric.WithDescription("Credential refresh calls"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	throttleMs, err := meter.Float64Histogram(
		"api.throttle.delay_ms",
		metric.WithDescription("Time spent waiting on budget admission"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"api.request.duration_ms",
		metric.WithDescription("Logical request duration, end to end"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		sends:        sends,
		outcomes:     outcomes,
		refreshes:    refreshes,
		throttleMs:   throttleMs,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordSend(ctx context.Context, meta RequestMeta, kind string) {
	m.sends.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", meta.Method),
		attribute.String("outcome", kind),
	))
}

func (m *metricsImpl) RecordOutcome(ctx context.Context, meta RequestMeta, kind string, attempts int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", meta.Method),
		attribute.String("outcome", kind),
		attribute.Int("attempts", attempts),
	)
	m.outcomes.Add(ctx, 1, attrs)
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (m *metricsImpl) RecordThrottleDelay(ctx context.Context, delay time.Duration) {
	m.throttleMs.Record(ctx, float64(delay.Milliseconds()))
}

func (m *metricsImpl) RecordRefresh(ctx context.Context, err error) {
	m.refreshes.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordSend(ctx context.Context, meta RequestMeta, kind string) {}
func (m *noopMetrics) RecordOutcome(ctx context.Context, meta RequestMeta, kind string, attempts int, duration time.Duration) {
}
func (m *noopMetrics) RecordThrottleDelay(ctx context.Context, delay time.Duration) {}
func (m *noopMetrics) RecordRefresh(ctx context.Context, err error)                 {}

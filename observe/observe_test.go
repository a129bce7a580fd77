package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "minimal valid",
			config: Config{ServiceName: "svc"},
		},
		{
			name: "all subsystems enabled",
			config: Config{
				ServiceName: "svc",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
				Logging:     LoggingConfig{Enabled: true, Level: "debug"},
			},
		},
		{
			name:    "missing service name",
			config:  Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "bad tracing exporter",
			config: Config{
				ServiceName: "svc",
				Tracing:     TracingConfig{Enabled: true, Exporter: "jaeger"},
			},
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name: "sample pct out of range",
			config: Config{
				ServiceName: "svc",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "bad metrics exporter",
			config: Config{
				ServiceName: "svc",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name: "bad log level",
			config: Config{
				ServiceName: "svc",
				Logging:     LoggingConfig{Enabled: true, Level: "verbose"},
			},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name: "disabled subsystems skip validation",
			config: Config{
				ServiceName: "svc",
				Tracing:     TracingConfig{Enabled: false, Exporter: "jaeger"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNoop(t *testing.T) {
	obs := Noop()

	if obs.Tracer() == nil || obs.Metrics() == nil || obs.Logger() == nil {
		t.Fatal("noop observer has nil subsystems")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	// Noop subsystems must be callable without setup.
	ctx, span := obs.Tracer().StartSpan(context.Background(), RequestMeta{ID: "r", Method: "GET", Path: "/x"})
	obs.Tracer().AddAttempt(span, 1, "success", 0)
	obs.Tracer().EndSpan(span, 1, nil)
	obs.Metrics().RecordSend(ctx, RequestMeta{}, "success")
	obs.Metrics().RecordOutcome(ctx, RequestMeta{}, "success", 1, 0)
	obs.Logger().Info(ctx, "noop")
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "svc"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	obs.Logger().Info(context.Background(), "should not panic")
}

func TestSpanName(t *testing.T) {
	got := RequestMeta{Method: "POST", Path: "/orders/123"}.SpanName()
	if got != "api.request.POST /orders/123" {
		t.Errorf("SpanName = %q", got)
	}
}

// Package observe provides the telemetry surface for the resilience layer:
// structured JSON logging, OpenTelemetry metrics, and OpenTelemetry tracing,
// behind one Observer facade with no-op fallbacks for whatever is disabled.
//
// The instruments are request-shaped rather than generic: sends and logical
// requests counted by classified outcome kind, a histogram of time spent
// waiting on budget admission, and a refresh counter split by success. One
// span covers a whole logical request, with an event per physical attempt,
// so a trace shows the retry loop rather than a flat list of HTTP calls.
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "billing-sync",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//
// Field keys that may carry credentials (token, client_secret, ...) are
// redacted before a log entry is serialized.
package observe

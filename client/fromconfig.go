package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/steadyhq/relentless/backoff"
	"github.com/steadyhq/relentless/budget"
	"github.com/steadyhq/relentless/config"
	"github.com/steadyhq/relentless/credential"
	"github.com/steadyhq/relentless/observe"
	"github.com/steadyhq/relentless/transport"
)

// NewFromConfig assembles a fully wired client from a loaded configuration:
// HTTP transport, credential store against the configured token endpoint,
// budget tracker, backoff controller, optional breaker and in-flight cap,
// and telemetry. The initial credential pair comes from the caller (the
// first OAuth exchange is interactive and outside this layer); pass a zero
// pair for APIs without authentication.
func NewFromConfig(ctx context.Context, cfg *config.Config, initial credential.Pair, extra ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := transport.NewHTTP(transport.HTTPConfig{
		BaseURL:          cfg.API.BaseURL,
		UserAgent:        cfg.API.UserAgent,
		MaxResponseBytes: cfg.API.MaxResponseBytes,
		Client: &http.Client{
			// Context deadlines drive per-request timeouts; this is the
			// backstop for requests issued without one.
			Timeout: cfg.API.RequestTimeout.Std() + 5*time.Second,
		},
	})

	opts := []Option{
		WithBudget(budget.NewTracker(budget.Config{
			Capacity:          cfg.Budget.Capacity,
			Window:            cfg.Budget.Window.Std(),
			ThrottleThreshold: cfg.Budget.ThrottleThreshold,
		})),
		WithBackoff(backoff.NewController(backoff.Config{
			MaxAttempts: cfg.Backoff.MaxAttempts,
			BaseDelay:   cfg.Backoff.BaseDelay.Std(),
			MaxDelay:    cfg.Backoff.MaxDelay.Std(),
		})),
		WithRequestTimeout(cfg.API.RequestTimeout.Std()),
	}

	if cfg.OAuth.TokenURL != "" {
		endpoint := credential.NewEndpoint(credential.EndpointConfig{
			TokenURL:     cfg.OAuth.TokenURL,
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			AuthMethod:   cfg.OAuth.AuthMethod,
			Scopes:       cfg.OAuth.Scopes,
		})
		opts = append(opts, WithCredentials(credential.NewStore(initial, endpoint.Refresh)))
	}

	if cfg.Breaker.Enabled {
		opts = append(opts, WithBreaker(BreakerConfig{
			MaxFailures:  cfg.Breaker.MaxFailures,
			ResetTimeout: cfg.Breaker.ResetTimeout.Std(),
		}))
	}
	if cfg.MaxInflight > 0 {
		opts = append(opts, WithMaxInflight(cfg.MaxInflight))
	}

	obsCfg := observe.Config{
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.Observe.Tracing.Enabled,
			Exporter:  cfg.Observe.Tracing.Exporter,
			SamplePct: cfg.Observe.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.Observe.Metrics.Enabled,
			Exporter: cfg.Observe.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: cfg.Observe.Logging.Enabled,
			Level:   cfg.Observe.Logging.Level,
		},
	}
	if obsCfg.ServiceName != "" {
		obs, err := observe.NewObserver(ctx, obsCfg)
		if err != nil {
			return nil, fmt.Errorf("client: setup telemetry: %w", err)
		}
		opts = append(opts, WithObserver(obs))
	}

	opts = append(opts, extra...)
	return New(t, opts...), nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full startup configuration, read once and immutable after.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	API     APIConfig     `yaml:"api"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Budget  BudgetConfig  `yaml:"budget"`
	Backoff BackoffConfig `yaml:"backoff"`
	Breaker BreakerConfig `yaml:"breaker"`
	Observe ObserveConfig `yaml:"observe"`

	// MaxInflight caps concurrent logical requests. 0 means unlimited.
	MaxInflight int `yaml:"max_inflight"`
}

// ServiceConfig names the consuming service for telemetry.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// APIConfig configures the remote API transport.
type APIConfig struct {
	BaseURL          string   `yaml:"base_url"`
	UserAgent        string   `yaml:"user_agent"`
	RequestTimeout   Duration `yaml:"request_timeout"`    // default 30s
	MaxResponseBytes int64    `yaml:"max_response_bytes"` // default 10 MiB
}

// OAuthConfig configures the authorization server. ClientSecret supports
// ${ENV_VAR} expansion so secrets stay out of the file.
type OAuthConfig struct {
	TokenURL     string   `yaml:"token_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthMethod   string   `yaml:"auth_method"`
	Scopes       []string `yaml:"scopes"`
}

// BudgetConfig configures the rate budget tracker.
type BudgetConfig struct {
	Capacity          int      `yaml:"capacity"`           // default 200
	Window            Duration `yaml:"window"`             // default 1m
	ThrottleThreshold float64  `yaml:"throttle_threshold"` // default 0.7
}

// BackoffConfig configures the retry controller.
type BackoffConfig struct {
	MaxAttempts int      `yaml:"max_attempts"` // retries beyond the first send, default 3
	BaseDelay   Duration `yaml:"base_delay"`   // default 500ms
	MaxDelay    Duration `yaml:"max_delay"`    // default 30s
}

// BreakerConfig configures the optional circuit breaker.
type BreakerConfig struct {
	Enabled      bool     `yaml:"enabled"`
	MaxFailures  int      `yaml:"max_failures"`  // default 5
	ResetTimeout Duration `yaml:"reset_timeout"` // default 30s
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	Tracing struct {
		Enabled   bool    `yaml:"enabled"`
		Exporter  string  `yaml:"exporter"`
		SamplePct float64 `yaml:"sample_pct"`
	} `yaml:"tracing"`
	Metrics struct {
		Enabled  bool   `yaml:"enabled"`
		Exporter string `yaml:"exporter"`
	} `yaml:"metrics"`
	Logging struct {
		Enabled bool   `yaml:"enabled"`
		Level   string `yaml:"level"`
	} `yaml:"logging"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads, expands, parses, defaults, and validates a YAML config file.
// ${VAR} references anywhere in the file are replaced from the environment
// and error if unset, so a missing secret fails at startup instead of on
// the first 401.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse parses raw YAML config bytes.
func Parse(raw []byte) (*Config, error) {
	expanded, err := expandEnvStrict(string(raw))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = Duration(30 * time.Second)
	}
	if c.API.MaxResponseBytes <= 0 {
		c.API.MaxResponseBytes = 10 << 20
	}
	if c.Budget.Capacity <= 0 {
		c.Budget.Capacity = 200
	}
	if c.Budget.Window <= 0 {
		c.Budget.Window = Duration(time.Minute)
	}
	if c.Budget.ThrottleThreshold <= 0 {
		c.Budget.ThrottleThreshold = 0.7
	}
	if c.Backoff.MaxAttempts <= 0 {
		c.Backoff.MaxAttempts = 3
	}
	if c.Backoff.BaseDelay <= 0 {
		c.Backoff.BaseDelay = Duration(500 * time.Millisecond)
	}
	if c.Backoff.MaxDelay <= 0 {
		c.Backoff.MaxDelay = Duration(30 * time.Second)
	}
	if c.Breaker.MaxFailures <= 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.ResetTimeout <= 0 {
		c.Breaker.ResetTimeout = Duration(30 * time.Second)
	}
}

// Validate checks invariants that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, ErrMissingBaseURL)
	}
	if c.Budget.ThrottleThreshold > 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidThreshold, c.Budget.ThrottleThreshold))
	}
	if c.Backoff.BaseDelay > c.Backoff.MaxDelay {
		errs = append(errs, fmt.Errorf("%w: base %v > max %v", ErrInvalidBackoff,
			c.Backoff.BaseDelay.Std(), c.Backoff.MaxDelay.Std()))
	}
	if c.OAuth.TokenURL != "" && c.OAuth.ClientID == "" {
		errs = append(errs, ErrMissingClientID)
	}

	return errors.Join(errs...)
}

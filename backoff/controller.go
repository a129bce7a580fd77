package backoff

import (
	"math/rand/v2"
	"time"

	"github.com/steadyhq/relentless/outcome"
)

// StepType is the controller's verdict on a failed attempt.
type StepType int

const (
	// StepReturn means the outcome is final: hand it to the caller.
	StepReturn StepType = iota

	// StepRetryAfter means wait Step.Delay, then resend.
	StepRetryAfter

	// StepRefreshThenRetry means refresh credentials, then resend
	// immediately. Does not consume a retry-attempt slot.
	StepRefreshThenRetry
)

// String returns the lowercase name of the step type.
func (s StepType) String() string {
	switch s {
	case StepReturn:
		return "return"
	case StepRetryAfter:
		return "retry_after"
	case StepRefreshThenRetry:
		return "refresh_then_retry"
	default:
		return "unknown"
	}
}

// Step is one transition of the retry state machine.
type Step struct {
	Type  StepType
	Delay time.Duration
}

// Config configures the retry/backoff controller.
type Config struct {
	// MaxAttempts is the number of retries beyond the first send.
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry and the width of the
	// jitter band. Default: 500ms
	BaseDelay time.Duration

	// MaxDelay caps the computed delay. Default: 30s
	MaxDelay time.Duration
}

// Controller decides, per classified failure, whether to retry and how long
// to wait first. NextStep is a pure function of (outcome, attempt,
// refreshed) apart from jitter, so the whole policy is testable without any
// network machinery.
type Controller struct {
	config Config
	jitter func(time.Duration) time.Duration
}

// NewController creates a controller.
func NewController(config Config) *Controller {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 500 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}

	return &Controller{
		config: config,
		// Jitter in [0, BaseDelay) spreads concurrent callers so a shared
		// failure does not turn into a synchronized retry storm.
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		jitter: func(base time.Duration) time.Duration {
			return time.Duration(rand.Int64N(int64(base)))
		},
	}
}

// NextStep maps a classified failure and attempt count to a verdict.
// attempt starts at 0 for the first send; refreshed reports whether this
// logical request has already spent its one credential refresh.
func (c *Controller) NextStep(out *outcome.Outcome, attempt int, refreshed bool) Step {
	if out.Kind == outcome.KindUnauthenticated && !refreshed {
		return Step{Type: StepRefreshThenRetry}
	}

	if !out.Retryable() || attempt >= c.config.MaxAttempts {
		return Step{Type: StepReturn}
	}

	// Server instruction overrides the local estimate.
	if out.Kind == outcome.KindRateLimited && out.RetryAfter > 0 {
		return Step{Type: StepRetryAfter, Delay: out.RetryAfter}
	}

	return Step{Type: StepRetryAfter, Delay: c.delay(attempt)}
}

// delay computes min(base * 2^attempt + jitter, max).
func (c *Controller) delay(attempt int) time.Duration {
	base := c.config.BaseDelay
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= c.config.MaxDelay {
			return c.config.MaxDelay
		}
	}
	d += c.jitter(base)
	if d > c.config.MaxDelay {
		d = c.config.MaxDelay
	}
	return d
}

// Config returns the controller configuration.
func (c *Controller) Config() Config {
	return c.config
}

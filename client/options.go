package client

import (
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/steadyhq/relentless/backoff"
	"github.com/steadyhq/relentless/budget"
	"github.com/steadyhq/relentless/credential"
	"github.com/steadyhq/relentless/observe"
)

// Option configures a Client.
type Option func(*Client)

// WithCredentials attaches a credential store. Every request gets a Bearer
// token from it, and 401 responses trigger its single-flight refresh.
func WithCredentials(store *credential.Store) Option {
	return func(c *Client) {
		c.creds = store
	}
}

// WithBudget replaces the default rate budget tracker.
func WithBudget(tracker *budget.Tracker) Option {
	return func(c *Client) {
		c.budget = tracker
	}
}

// WithBackoff replaces the default retry/backoff controller.
func WithBackoff(controller *backoff.Controller) Option {
	return func(c *Client) {
		c.backoff = controller
	}
}

// WithObserver attaches telemetry. Without it the client is silent.
func WithObserver(obs observe.Observer) Option {
	return func(c *Client) {
		if obs != nil {
			c.obs = obs
		}
	}
}

// WithBreaker adds a circuit breaker that fails fast while the upstream
// keeps returning server or connection failures.
func WithBreaker(config BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = newBreaker(config)
	}
}

// WithMaxInflight caps the number of logical requests executing at once.
// Zero or negative means unlimited.
func WithMaxInflight(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.inflight = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRequestTimeout sets a default deadline applied to logical requests
// whose context carries none.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/steadyhq/relentless/backoff"
	"github.com/steadyhq/relentless/budget"
	"github.com/steadyhq/relentless/credential"
	"github.com/steadyhq/relentless/observe"
	"github.com/steadyhq/relentless/outcome"
	"github.com/steadyhq/relentless/transport"
)

// Client is the request orchestrator: the single entry point through which
// all calls to the remote API flow. It composes budget admission,
// credential attachment, transport sends, outcome classification, and the
// retry/backoff state machine into one Execute call.
//
// Contract:
//   - Safe for concurrent use; any number of logical requests may be in
//     flight at once.
//   - Execute suspends (never busy-waits) during admission delays, network
//     I/O, and credential refresh.
//   - No lock is held across network I/O anywhere in the composition.
type Client struct {
	transport transport.Transport
	creds     *credential.Store
	budget    *budget.Tracker
	backoff   *backoff.Controller
	breaker   *breaker
	inflight  *semaphore.Weighted
	obs       observe.Observer
	timeout   time.Duration

	// Test seams.
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// New creates a client around the given transport. A nil transport is a
// programmer error and panics. Unset collaborators get defaults: a tracker
// and controller with their default configs, a no-op observer, and no
// credential store (requests go out unauthenticated).
func New(t transport.Transport, opts ...Option) *Client {
	if t == nil {
		panic("client: nil transport")
	}

	c := &Client{
		transport: t,
		budget:    budget.NewTracker(budget.Config{}),
		backoff:   backoff.NewController(backoff.Config{}),
		obs:       observe.Noop(),
		sleep:     sleepCtx,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs one logical request to completion: admission, send,
// classification, and as many backoff retries and at most one credential
// refresh as the policy allows. The returned outcome is always one of the
// closed taxonomy kinds, with Attempts set to the number of physical sends.
func (c *Client) Execute(ctx context.Context, req *transport.Request) *outcome.Outcome {
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	meta := observe.RequestMeta{ID: c.newID(), Method: req.Method, Path: req.Path}
	log := c.obs.Logger().WithRequest(meta)

	if c.inflight != nil {
		if err := c.inflight.Acquire(ctx, 1); err != nil {
			return c.timeoutOutcome(ctx, 0, 0)
		}
		defer c.inflight.Release(1)
	}

	ctx, span := c.obs.Tracer().StartSpan(ctx, meta)
	start := time.Now()

	out := c.run(ctx, req, meta, log, span)

	c.obs.Metrics().RecordOutcome(ctx, meta, out.Kind.String(), out.Attempts, time.Since(start))
	c.obs.Tracer().EndSpan(span, out.Attempts, out.Err)
	return out
}

// BudgetStats returns a read-only snapshot of the rate budget, for
// observability and monitoring callers.
func (c *Client) BudgetStats() budget.Stats {
	return c.budget.Stats()
}

// BreakerState returns the circuit breaker state, or BreakerClosed when no
// breaker is configured.
func (c *Client) BreakerState() BreakerState {
	if c.breaker == nil {
		return BreakerClosed
	}
	return c.breaker.currentState()
}

// run drives the retry state machine for one logical request. attempt
// counts consumed retry slots; sends counts physical sends; the two differ
// because a credential refresh resend is free.
func (c *Client) run(ctx context.Context, req *transport.Request, meta observe.RequestMeta, log observe.Logger, span trace.Span) *outcome.Outcome {
	var (
		attempt   int
		sends     int
		refreshed bool
		lastKind  outcome.Kind
	)

	for {
		// Admission. Loops because a paced delay only reserves a slot
		// for one re-check, not forever.
		for {
			d := c.budget.TryAdmit()
			if d.Admitted {
				break
			}
			log.Debug(ctx, "rate budget delay",
				observe.Duration("delay", d.Delay))
			c.obs.Metrics().RecordThrottleDelay(ctx, d.Delay)
			if err := c.sleep(ctx, d.Delay); err != nil {
				return c.timeoutOutcome(ctx, sends, lastKind)
			}
		}

		if c.breaker != nil && !c.breaker.allow() {
			return &outcome.Outcome{
				Kind:     outcome.KindServerFailure,
				Attempts: sends,
				Err:      fmt.Errorf("%w: %w", outcome.ErrServerFailure, ErrCircuitOpen),
			}
		}

		phys := req.Clone()
		if c.creds != nil {
			pair, err := c.creds.Fresh(ctx)
			if err != nil {
				return c.credentialOutcome(sends, err)
			}
			if phys.Headers == nil {
				phys.Headers = make(map[string]string, 1)
			}
			phys.Headers["Authorization"] = "Bearer " + pair.AccessToken
		}

		resp, sendErr := c.transport.Send(ctx, phys)
		sends++

		out := outcome.Classify(resp, sendErr)
		out.Attempts = sends
		lastKind = out.Kind

		if resp != nil {
			c.budget.Record(usageFromResponse(resp, out))
		}
		if c.breaker != nil {
			c.breaker.record(out.Kind)
		}
		c.obs.Metrics().RecordSend(ctx, meta, out.Kind.String())

		if out.OK() {
			return out
		}

		step := c.backoff.NextStep(out, attempt, refreshed || c.creds == nil)
		c.obs.Tracer().AddAttempt(span, sends, out.Kind.String(), step.Delay)

		switch step.Type {
		case backoff.StepRefreshThenRetry:
			refreshed = true
			c.creds.Invalidate()
			_, rerr := c.creds.Refresh(ctx)
			c.obs.Metrics().RecordRefresh(ctx, rerr)
			if rerr != nil {
				log.Warn(ctx, "credential refresh failed", observe.Err(rerr))
				return c.credentialOutcome(sends, rerr)
			}
			log.Info(ctx, "credentials refreshed, resending")
			// A refresh resend does not consume a retry slot.
			continue

		case backoff.StepRetryAfter:
			log.Warn(ctx, "retrying",
				observe.String("outcome", out.Kind.String()),
				observe.Int("attempt", attempt+1),
				observe.Duration("delay", step.Delay))
			if err := c.sleep(ctx, step.Delay); err != nil {
				return c.timeoutOutcome(ctx, sends, lastKind)
			}
			attempt++
			continue

		default: // backoff.StepReturn
			if out.Retryable() {
				// Retry budget exhausted on a retryable failure.
				return &outcome.Outcome{
					Kind:     outcome.KindAttemptsExhausted,
					Cause:    out.Kind,
					Status:   out.Status,
					Attempts: sends,
					Err:      fmt.Errorf("%w after %d sends: %w", outcome.ErrAttemptsExhausted, sends, out.Err),
				}
			}
			return out
		}
	}
}

// credentialOutcome maps store errors onto the taxonomy: no credentials at
// all is Unauthenticated, a rejected refresh is RefreshFailed.
func (c *Client) credentialOutcome(sends int, err error) *outcome.Outcome {
	if errors.Is(err, credential.ErrNotAuthenticated) {
		return &outcome.Outcome{
			Kind:     outcome.KindUnauthenticated,
			Attempts: sends,
			Err:      fmt.Errorf("%w: %w", outcome.ErrUnauthenticated, err),
		}
	}
	return &outcome.Outcome{
		Kind:     outcome.KindRefreshFailed,
		Attempts: sends,
		Err:      fmt.Errorf("%w: %w", outcome.ErrRefreshFailed, err),
	}
}

// timeoutOutcome is returned when the request's deadline expires while
// waiting between sends. Cause keeps the last observed failure kind so
// callers still know what was being retried.
func (c *Client) timeoutOutcome(ctx context.Context, sends int, lastKind outcome.Kind) *outcome.Outcome {
	err := ctx.Err()
	if err == nil {
		err = context.DeadlineExceeded
	}
	return &outcome.Outcome{
		Kind:     outcome.KindTimeout,
		Cause:    lastKind,
		Attempts: sends,
		Err:      fmt.Errorf("%w: %w", outcome.ErrTimeout, err),
	}
}

// usageFromResponse converts response headers into tracker input. Returns
// nil when the response carries no usage data, so local counting stands.
func usageFromResponse(resp *transport.Response, out *outcome.Outcome) *budget.ServerUsage {
	info := transport.ParseRateLimit(resp.Headers, time.Now())

	usage := &budget.ServerUsage{Remaining: -1}
	if info != nil {
		usage.Remaining = info.Remaining
		usage.ResetAt = info.ResetAt
		usage.RetryAfter = info.RetryAfter
	}
	if out.Kind == outcome.KindRateLimited && usage.RetryAfter == 0 {
		usage.RetryAfter = out.RetryAfter
	}
	if info == nil && usage.RetryAfter == 0 {
		return nil
	}
	return usage
}

// sleepCtx waits for d or the context, whichever ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

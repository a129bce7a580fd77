package budget

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config configures the rate budget tracker.
type Config struct {
	// Capacity is the number of requests allowed per window.
	// Default: 200
	Capacity int

	// Window is the length of the rolling window.
	// Default: 1 minute
	Window time.Duration

	// ThrottleThreshold is the fraction of capacity at which proactive
	// pacing begins. Below it, admissions are immediate; between it and
	// full capacity, admissions are spread over the remaining window.
	// Default: 0.7
	ThrottleThreshold float64
}

// Decision is the result of an admission check.
type Decision struct {
	// Admitted is true when the request may proceed now.
	Admitted bool

	// Delay is how long to wait before asking again. Only set when
	// Admitted is false.
	Delay time.Duration

	// NearLimit is true once consumption has crossed the throttle
	// threshold, whether or not the request was admitted.
	NearLimit bool
}

// ServerUsage carries usage data reported by the server on a response.
// The server is ground truth: a shared remote budget may be drained by
// other processes this tracker cannot see.
type ServerUsage struct {
	// Remaining is the server-reported requests left in the window,
	// -1 when the server did not report it.
	Remaining int

	// ResetAt is the server-reported window end, zero when absent.
	ResetAt time.Time

	// RetryAfter is the wait instructed by a 429, zero otherwise.
	RetryAfter time.Duration
}

// Stats is a read-only snapshot for observability callers.
type Stats struct {
	Consumed int
	Capacity int
	ResetAt  time.Time
}

// Tracker maintains the shared request budget for one remote API.
//
// Contract:
//   - Safe for concurrent use; admission grant and counter increment happen
//     under one critical section, so two concurrent admissions can never
//     both take the same slot.
//   - No lock is held across any I/O; TryAdmit and Record are purely
//     in-memory and return immediately.
type Tracker struct {
	config Config
	now    func() time.Time

	mu          sync.Mutex
	windowStart time.Time
	windowEnd   time.Time
	consumed    int
	pacer       *rate.Limiter
}

// NewTracker creates a tracker with an empty window starting now.
func NewTracker(config Config) *Tracker {
	// Apply defaults
	if config.Capacity <= 0 {
		config.Capacity = 200
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.ThrottleThreshold <= 0 || config.ThrottleThreshold > 1 {
		config.ThrottleThreshold = 0.7
	}

	t := &Tracker{
		config: config,
		now:    time.Now,
	}
	now := t.now()
	t.windowStart = now
	t.windowEnd = now.Add(config.Window)
	return t
}

// TryAdmit makes a non-blocking admission decision. Exhausted budgets yield
// a delay equal to the time remaining in the window; between the throttle
// threshold and capacity, admissions are paced so the remaining budget
// spreads over the remaining window instead of burning out in a burst.
func (t *Tracker) TryAdmit() Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.rollLocked(now)

	if t.consumed >= t.config.Capacity {
		delay := t.windowEnd.Sub(now)
		if delay < 0 {
			delay = 0
		}
		return Decision{Delay: delay, NearLimit: true}
	}

	threshold := int(float64(t.config.Capacity) * t.config.ThrottleThreshold)
	if t.consumed < threshold {
		t.consumed++
		return Decision{Admitted: true}
	}

	// Approaching the limit: pace instead of rejecting. Admission still
	// succeeds up to full capacity, just not all at once.
	if t.pacer == nil {
		t.rebuildPacerLocked(now)
	}
	res := t.pacer.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return Decision{Delay: d, NearLimit: true}
	}
	t.consumed++
	return Decision{Admitted: true, NearLimit: true}
}

// Record feeds a response's usage data back into the tracker. Server-
// reported values replace the local estimate; local counting is only the
// fallback for responses that carry no usage headers. A nil usage is a
// no-op (the admission already counted the request).
func (t *Tracker) Record(usage *ServerUsage) {
	if usage == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.rollLocked(now)

	if usage.RetryAfter > 0 {
		// A 429's retry-after overrides any local window computation.
		t.windowEnd = now.Add(usage.RetryAfter)
		t.windowStart = t.windowEnd.Add(-t.config.Window)
		t.consumed = t.config.Capacity
		t.pacer = nil
		return
	}

	if !usage.ResetAt.IsZero() && usage.ResetAt.After(now) {
		t.windowEnd = usage.ResetAt
		t.windowStart = t.windowEnd.Add(-t.config.Window)
	}

	if usage.Remaining >= 0 {
		consumed := t.config.Capacity - usage.Remaining
		if consumed < 0 {
			consumed = 0
		}
		if consumed > t.config.Capacity {
			consumed = t.config.Capacity
		}
		t.consumed = consumed
		t.rebuildPacerLocked(now)
	}
}

// Stats returns a snapshot of the current window.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollLocked(t.now())
	return Stats{
		Consumed: t.consumed,
		Capacity: t.config.Capacity,
		ResetAt:  t.windowEnd,
	}
}

// rollLocked resets the window once its length has elapsed.
// Caller must hold mu.
func (t *Tracker) rollLocked(now time.Time) {
	if now.Before(t.windowEnd) {
		return
	}
	t.windowStart = now
	t.windowEnd = now.Add(t.config.Window)
	t.consumed = 0
	t.pacer = nil
}

// rebuildPacerLocked sizes the pacer so the remaining budget spreads evenly
// over the remaining window. Caller must hold mu.
func (t *Tracker) rebuildPacerLocked(now time.Time) {
	remaining := t.config.Capacity - t.consumed
	if remaining <= 0 {
		t.pacer = nil
		return
	}
	left := t.windowEnd.Sub(now)
	if left <= 0 {
		t.pacer = nil
		return
	}
	perSecond := float64(remaining) / left.Seconds()
	t.pacer = rate.NewLimiter(rate.Limit(perSecond), 1)
}

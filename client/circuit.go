package client

import (
	"sync"
	"time"

	"github.com/steadyhq/relentless/outcome"
)

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	// BreakerClosed means requests flow normally.
	BreakerClosed BreakerState = iota
	// BreakerOpen means sends are refused without touching the wire.
	BreakerOpen
	// BreakerHalfOpen means a limited number of probes may go through.
	BreakerHalfOpen
)

// String returns the string representation of the state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the upstream circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive upstream failures
	// (ServerFailure or ConnectionFailure outcomes) before opening.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before allowing a
	// probe. Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxProbes is the max concurrent probes in half-open state.
	// Default: 1
	HalfOpenMaxProbes int

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to BreakerState)
}

// breaker fails fast when the upstream keeps failing, so an outage does not
// consume the whole retry budget of every caller. Only upstream-fault
// outcomes count; rate limits and client errors never trip it.
type breaker struct {
	config BreakerConfig

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	probes      int
}

func newBreaker(config BreakerConfig) *breaker {
	// Apply defaults
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxProbes <= 0 {
		config.HalfOpenMaxProbes = 1
	}

	return &breaker{config: config, state: BreakerClosed}
}

// allow reports whether a send may proceed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentLocked() {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		if b.probes < b.config.HalfOpenMaxProbes {
			b.probes++
			return true
		}
		return false
	default:
		return false
	}
}

// record feeds a classified send result back into the breaker.
func (b *breaker) record(kind outcome.Kind) {
	upstream := kind == outcome.KindServerFailure || kind == outcome.KindConnectionFailure

	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentLocked()

	if !upstream {
		// Anything that is not an upstream fault proves the wire works.
		if state != BreakerClosed || b.failures > 0 {
			b.failures = 0
			b.probes = 0
			b.transitionLocked(BreakerClosed)
		}
		return
	}

	b.failures++
	b.lastFailure = time.Now()

	switch state {
	case BreakerHalfOpen:
		// Probe failed: back to open.
		b.probes = 0
		b.transitionLocked(BreakerOpen)
	case BreakerClosed:
		if b.failures >= b.config.MaxFailures {
			b.transitionLocked(BreakerOpen)
		}
	}
}

// state returns the current breaker state.
func (b *breaker) currentState() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// currentLocked applies the open -> half-open timeout transition.
// Caller must hold mu.
func (b *breaker) currentLocked() BreakerState {
	if b.state == BreakerOpen && time.Since(b.lastFailure) >= b.config.ResetTimeout {
		b.probes = 0
		b.transitionLocked(BreakerHalfOpen)
	}
	return b.state
}

// transitionLocked changes state and fires the callback.
// Caller must hold mu.
func (b *breaker) transitionLocked(to BreakerState) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}

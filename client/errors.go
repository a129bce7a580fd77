package client

import "errors"

// Sentinel errors for the orchestrator.
var (
	// ErrCircuitOpen is returned (wrapped in a ServerFailure outcome) when
	// the circuit breaker refuses a send.
	ErrCircuitOpen = errors.New("client: circuit breaker is open")
)

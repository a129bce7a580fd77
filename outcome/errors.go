package outcome

import "errors"

// Sentinel errors, one per failure kind. Outcome.Err wraps these, so
// callers can match with errors.Is without inspecting kinds directly.
var (
	ErrInvalid           = errors.New("outcome: invalid request")
	ErrUnauthenticated   = errors.New("outcome: unauthenticated")
	ErrForbidden         = errors.New("outcome: access denied")
	ErrNotFound          = errors.New("outcome: not found")
	ErrRateLimited       = errors.New("outcome: rate limited")
	ErrServerFailure     = errors.New("outcome: upstream server failure")
	ErrConnectionFailure = errors.New("outcome: connection failure")
	ErrTimeout           = errors.New("outcome: deadline exceeded")
	ErrRefreshFailed     = errors.New("outcome: credential refresh failed")
	ErrAttemptsExhausted = errors.New("outcome: retry attempts exhausted")
)

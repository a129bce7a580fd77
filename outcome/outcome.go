package outcome

import "time"

// Kind identifies one member of the closed outcome taxonomy. Every request
// issued through the orchestrator resolves to exactly one Kind; raw status
// codes and transport errors never cross this boundary.
type Kind int

const (
	// KindSuccess is a 2xx response with its payload.
	KindSuccess Kind = iota

	// KindInvalid is a request the server rejected as malformed (400, 422,
	// or any status outside the classified set).
	KindInvalid

	// KindUnauthenticated is a 401: credentials are missing or expired.
	KindUnauthenticated

	// KindForbidden is a 403: credentials are valid but lack permission.
	KindForbidden

	// KindNotFound is a 404.
	KindNotFound

	// KindRateLimited is a 429, carrying the server's retry-after if given.
	KindRateLimited

	// KindServerFailure is a 500, 502, 503 or 504.
	KindServerFailure

	// KindConnectionFailure is a transport-level error: DNS, TLS,
	// timeout, connection reset.
	KindConnectionFailure

	// KindTimeout means the logical request's deadline expired while
	// waiting on an admission or backoff delay.
	KindTimeout

	// KindRefreshFailed means a credential refresh was required and the
	// authorization server rejected it. Re-authentication is required.
	KindRefreshFailed

	// KindAttemptsExhausted means a retryable failure persisted through
	// the full retry budget.
	KindAttemptsExhausted
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindInvalid:
		return "invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServerFailure:
		return "server_failure"
	case KindConnectionFailure:
		return "connection_failure"
	case KindTimeout:
		return "timeout"
	case KindRefreshFailed:
		return "refresh_failed"
	case KindAttemptsExhausted:
		return "attempts_exhausted"
	default:
		return "unknown"
	}
}

// Retryable reports whether failures of this kind may be resolved by
// resending. Retryability is derived from the kind, never stored.
// KindUnauthenticated is not retryable as-is; it triggers a one-time
// credential refresh instead (see the backoff controller).
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServerFailure, KindConnectionFailure:
		return true
	default:
		return false
	}
}

// Err returns the sentinel error for a failure kind, or nil for KindSuccess.
func (k Kind) Err() error {
	switch k {
	case KindSuccess:
		return nil
	case KindInvalid:
		return ErrInvalid
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindServerFailure:
		return ErrServerFailure
	case KindConnectionFailure:
		return ErrConnectionFailure
	case KindTimeout:
		return ErrTimeout
	case KindRefreshFailed:
		return ErrRefreshFailed
	case KindAttemptsExhausted:
		return ErrAttemptsExhausted
	default:
		return ErrInvalid
	}
}

// Outcome is the classified result of one logical request.
type Outcome struct {
	// Kind is the taxonomy member this outcome belongs to.
	Kind Kind

	// Cause is only set for KindAttemptsExhausted and KindTimeout and
	// records the last underlying failure kind, so callers can still
	// distinguish "our network" (connection failures) from "their
	// servers" (server failures) after the retry budget ran out.
	Cause Kind

	// Status is the last HTTP status observed, 0 when no response arrived.
	Status int

	// Payload is the response body. Populated for KindSuccess and kept on
	// KindInvalid so field-level validation detail survives.
	Payload []byte

	// RetryAfter is the server-instructed wait on KindRateLimited.
	RetryAfter time.Duration

	// Attempts is the number of physical sends performed, for diagnostics.
	Attempts int

	// Err is the underlying error for failure kinds; nil on success. It
	// wraps the kind's sentinel, so errors.Is works against the taxonomy.
	Err error
}

// OK reports whether the outcome is a success.
func (o *Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Retryable reports whether the outcome's kind is retryable.
func (o *Outcome) Retryable() bool {
	return o.Kind.Retryable()
}

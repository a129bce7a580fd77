package outcome

import (
	"fmt"
	"time"

	"github.com/steadyhq/relentless/transport"
)

// Default wait applied when a 429 arrives without a Retry-After header.
const defaultRetryAfter = 5 * time.Second

// Classify maps a transport result to exactly one outcome. It is a total
// function: every (resp, err) combination has a classification, and no raw
// status code leaks past it.
//
// Transport-level timeouts classify as KindConnectionFailure, not
// KindTimeout; KindTimeout is reserved for the logical request's own
// deadline expiring between sends.
func Classify(resp *transport.Response, err error) *Outcome {
	if err != nil {
		return &Outcome{
			Kind: KindConnectionFailure,
			Err:  fmt.Errorf("%w: %w", ErrConnectionFailure, err),
		}
	}

	switch {
	case resp.Status >= 200 && resp.Status < 300:
		return &Outcome{
			Kind:    KindSuccess,
			Status:  resp.Status,
			Payload: resp.Body,
		}

	case resp.Status == 400 || resp.Status == 422:
		return failure(KindInvalid, resp, resp.Body)

	case resp.Status == 401:
		return failure(KindUnauthenticated, resp, nil)

	case resp.Status == 403:
		return failure(KindForbidden, resp, nil)

	case resp.Status == 404:
		return failure(KindNotFound, resp, nil)

	case resp.Status == 429:
		o := failure(KindRateLimited, resp, nil)
		o.RetryAfter = transport.ParseRetryAfter(resp.Headers.Get("Retry-After"), time.Now())
		if o.RetryAfter == 0 {
			o.RetryAfter = defaultRetryAfter
		}
		return o

	case resp.Status == 500 || resp.Status == 502 || resp.Status == 503 || resp.Status == 504:
		return failure(KindServerFailure, resp, nil)

	default:
		// Conservative: unknown statuses are terminal, never retried.
		return failure(KindInvalid, resp, resp.Body)
	}
}

func failure(kind Kind, resp *transport.Response, payload []byte) *Outcome {
	return &Outcome{
		Kind:    kind,
		Status:  resp.Status,
		Payload: payload,
		Err:     fmt.Errorf("%w (HTTP %d)", kind.Err(), resp.Status),
	}
}

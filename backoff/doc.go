// Package backoff implements the retry policy as an explicit state machine.
//
// Rather than retrying via recursion or callbacks, the controller exposes a
// single transition function: given the classified outcome of an attempt,
// the attempt number, and whether the logical request has already refreshed
// credentials, NextStep returns one of three verdicts: return the outcome,
// wait and resend, or refresh credentials and resend. The orchestrator in
// package client drives the loop; the policy itself touches no I/O, no
// clocks beyond the delays it hands back, and no shared state.
//
// Delays grow exponentially with a random jitter in [0, BaseDelay), capped
// at MaxDelay. A server-supplied retry-after always takes precedence over
// the computed delay. The one-time refresh verdict does not consume a retry
// slot: recovering a stale credential is not a failure of the request.
package backoff

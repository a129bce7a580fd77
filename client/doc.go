// Package client is the request orchestrator: the façade through which all
// calls to a rate-limited, OAuth2-protected API flow.
//
// One Execute call runs one logical request to completion. Internally that
// means: ask the budget tracker for admission (waiting out any delay it
// returns), attach a fresh credential, send through the transport, classify
// the result, feed server-reported usage back into the tracker, and let the
// backoff controller decide whether to return, wait and resend, or refresh
// credentials and resend. The caller sees none of that, just a single
// classified outcome and the number of physical sends it took.
//
//	c := client.New(transportImpl,
//	    client.WithCredentials(store),
//	    client.WithBudget(tracker),
//	    client.WithRequestTimeout(30*time.Second),
//	)
//	out := c.Execute(ctx, &transport.Request{Method: "GET", Path: "/items"})
//	if !out.OK() {
//	    return out.Err
//	}
//
// Guarantees:
//   - At most one credential refresh per logical request; a second 401
//     after a refresh is terminal.
//   - Connection failures and server failures stay distinct all the way to
//     the caller, even through AttemptsExhausted (see outcome.Outcome.Cause).
//   - A deadline expiring during an admission or backoff wait returns a
//     Timeout outcome immediately; mid-flight it surfaces as the transport's
//     ConnectionFailure and follows the normal retry bound.
//
// The optional circuit breaker and in-flight cap protect the process and
// the upstream during sustained outages; both are off unless configured.
package client

// Package transport defines the boundary between the resilience layer and
// the wire: a normalized request/response pair, the Transport interface that
// sends exactly one physical request, and parsing of rate-limit response
// headers.
//
// The orchestrator in package client is transport-agnostic. HTTPTransport is
// a ready-made implementation over net/http; anything that can satisfy the
// one-method Transport interface (a fake in tests, a recording proxy, a
// unix-socket client) plugs in the same way:
//
//	t := transport.NewHTTP(transport.HTTPConfig{
//	    BaseURL:   "https://api.example.com/v2",
//	    UserAgent: "relentless/1.0",
//	})
//	resp, err := t.Send(ctx, &transport.Request{Method: "GET", Path: "/items"})
//
// ParseRateLimit understands both the IETF draft RateLimit-* headers and the
// common X-RateLimit-* variants, plus Retry-After in either seconds or
// HTTP-date form.
package transport

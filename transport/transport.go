package transport

import (
	"context"
	"net/http"
)

// Request is a provider-agnostic description of a single HTTP exchange.
// The orchestrator treats it as opaque: resource wrappers build it, the
// transport sends it.
type Request struct {
	// Method is the HTTP method (GET, POST, ...).
	Method string

	// Path is the request path relative to the transport's base URL,
	// including any query string.
	Path string

	// Headers are additional request headers. The orchestrator adds the
	// Authorization header itself; callers should not set it here.
	Headers map[string]string

	// Body is the request payload, replayed verbatim on every retry.
	Body []byte
}

// Clone returns a deep copy of the request. The orchestrator clones before
// mutating headers so retries never observe a previous attempt's state.
func (r *Request) Clone() *Request {
	c := *r
	if r.Headers != nil {
		c.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			c.Headers[k] = v
		}
	}
	return &c
}

// Response is a fully-buffered transport response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Headers are the response headers.
	Headers http.Header

	// Body is the response payload, already read and closed.
	Body []byte
}

// Transport sends one physical request and returns either a response or a
// transport-level error (DNS, TLS, timeout, connection reset).
//
// Contract:
//   - Implementations must be safe for concurrent use.
//   - Send must honor ctx cancellation and deadlines.
//   - A non-2xx status is a Response, not an error; errors are reserved for
//     failures below the HTTP layer.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Send calls f.
func (f Func) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

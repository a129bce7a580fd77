package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures the default net/http-backed transport.
type HTTPConfig struct {
	// BaseURL is prepended to every request path.
	BaseURL string

	// UserAgent is sent with every request if set.
	UserAgent string

	// MaxResponseBytes caps how much of a response body is read.
	// Default: 10 MiB.
	MaxResponseBytes int64

	// Client is the underlying HTTP client. If nil, a default client with
	// a 30s timeout is used. Per-request deadlines come from the context,
	// so the client timeout is only a safety net.
	Client *http.Client
}

// HTTPTransport is the default Transport implementation over net/http.
// It buffers response bodies so attempts can be classified and replayed
// without the caller touching the wire.
type HTTPTransport struct {
	config HTTPConfig
}

// NewHTTP creates an HTTP transport for the given base URL.
func NewHTTP(config HTTPConfig) *HTTPTransport {
	if config.MaxResponseBytes <= 0 {
		config.MaxResponseBytes = 10 << 20
	}
	if config.Client == nil {
		config.Client = &http.Client{Timeout: 30 * time.Second}
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &HTTPTransport{config: config}
}

// Send performs one HTTP exchange. Non-2xx statuses are returned as
// responses; only failures below the HTTP layer become errors.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	url := t.config.BaseURL + "/" + strings.TrimLeft(req.Path, "/")

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if t.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.config.UserAgent)
	}
	if len(req.Body) > 0 {
		httpReq.ContentLength = int64(len(req.Body))
	}

	resp, err := t.config.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.config.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("transport: read response: %w", err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
	}, nil
}

// Ensure HTTPTransport implements Transport.
var _ Transport = (*HTTPTransport)(nil)

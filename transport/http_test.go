package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPTransport_Send(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("X-RateLimit-Remaining", "7")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	tr := NewHTTP(HTTPConfig{BaseURL: srv.URL, UserAgent: "relentless-test"})

	resp, err := tr.Send(context.Background(), &Request{
		Method:  http.MethodPost,
		Path:    "/widgets",
		Headers: map[string]string{"Authorization": "Bearer tok"},
		Body:    []byte(`{"name":"x"}`),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/widgets" {
		t.Errorf("server saw %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if string(gotBody) != `{"name":"x"}` {
		t.Errorf("body = %q", gotBody)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("Status = %d, want 201", resp.Status)
	}
	if string(resp.Body) != `{"id":1}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if resp.Headers.Get("X-RateLimit-Remaining") != "7" {
		t.Errorf("rate limit header not surfaced")
	}
}

func TestHTTPTransport_NonTwoHundredIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewHTTP(HTTPConfig{BaseURL: srv.URL})

	resp, err := tr.Send(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	if err != nil {
		t.Fatalf("Send() error = %v, want nil for HTTP-level failure", err)
	}
	if resp.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", resp.Status)
	}
}

func TestHTTPTransport_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	tr := NewHTTP(HTTPConfig{BaseURL: srv.URL})

	if _, err := tr.Send(context.Background(), &Request{Method: http.MethodGet, Path: "/x"}); err == nil {
		t.Fatal("Send() error = nil, want connection error")
	}
}

func TestHTTPTransport_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	tr := NewHTTP(HTTPConfig{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.Send(ctx, &Request{Method: http.MethodGet, Path: "/x"}); err == nil {
		t.Fatal("Send() error = nil, want context error")
	}
}

func TestRequest_Clone(t *testing.T) {
	orig := &Request{
		Method:  http.MethodGet,
		Path:    "/a",
		Headers: map[string]string{"Accept": "application/json"},
	}

	clone := orig.Clone()
	clone.Headers["Authorization"] = "Bearer tok"

	if _, ok := orig.Headers["Authorization"]; ok {
		t.Error("Clone() shares the header map with the original")
	}
}

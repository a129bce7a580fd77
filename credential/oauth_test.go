package credential

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEndpoint_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "rt-1" {
			t.Errorf("refresh_token = %q", got)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("expected basic auth client credentials")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "at-2",
			"refresh_token": "rt-2",
			"token_type": "Bearer",
			"expires_in": 3600,
			"scope": "read write"
		}`))
	}))
	defer srv.Close()

	ep := NewEndpoint(EndpointConfig{
		TokenURL:     srv.URL,
		ClientID:     "cid",
		ClientSecret: "secret",
	})

	pair, err := ep.Refresh(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if pair.AccessToken != "at-2" || pair.RefreshToken != "rt-2" {
		t.Errorf("pair = %+v", pair)
	}
	if len(pair.Scopes) != 2 || pair.Scopes[0] != "read" {
		t.Errorf("Scopes = %v, want [read write]", pair.Scopes)
	}
	if until := time.Until(pair.ExpiresAt); until < 59*time.Minute || until > 61*time.Minute {
		t.Errorf("ExpiresAt = %v, want ~1h out", pair.ExpiresAt)
	}
}

func TestEndpoint_Rejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant", "error_description": "token revoked"}`))
	}))
	defer srv.Close()

	ep := NewEndpoint(EndpointConfig{TokenURL: srv.URL, ClientID: "cid"})

	if _, err := ep.Refresh(context.Background(), "rt-dead"); err == nil {
		t.Fatal("Refresh() error = nil, want rejection")
	}
}

func TestEndpoint_ClientSecretPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostForm.Get("client_id"); got != "cid" {
			t.Errorf("client_id = %q, want form-encoded cid", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "at", "expires_in": 60}`))
	}))
	defer srv.Close()

	ep := NewEndpoint(EndpointConfig{
		TokenURL:   srv.URL,
		ClientID:   "cid",
		AuthMethod: "client_secret_post",
	})

	if _, err := ep.Refresh(context.Background(), "rt"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
}

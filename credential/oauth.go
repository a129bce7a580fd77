package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// EndpointConfig configures the OAuth2 token endpoint client.
type EndpointConfig struct {
	// TokenURL is the authorization server's token endpoint.
	TokenURL string

	// ClientID identifies this client to the authorization server.
	ClientID string

	// ClientSecret authenticates this client. Optional for public clients.
	ClientSecret string

	// AuthMethod is how client credentials are sent.
	// Options: "client_secret_basic" (default), "client_secret_post".
	AuthMethod string

	// Scopes requested on exchange.
	Scopes []string

	// Timeout is the HTTP timeout for token calls.
	// Default: 10 seconds.
	Timeout time.Duration

	// HTTPClient is the HTTP client to use. If nil, a default client is used.
	HTTPClient *http.Client
}

// Endpoint performs token exchange and refresh against an OAuth2
// authorization server. Its Refresh method satisfies RefreshFunc.
type Endpoint struct {
	config     EndpointConfig
	httpClient *http.Client
}

// NewEndpoint creates a token endpoint client.
func NewEndpoint(config EndpointConfig) *Endpoint {
	// Apply defaults
	if config.AuthMethod == "" {
		config.AuthMethod = "client_secret_basic"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Endpoint{config: config, httpClient: httpClient}
}

// Exchange performs the initial authorization-code exchange.
func (e *Endpoint) Exchange(ctx context.Context, code, redirectURI string) (Pair, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	if redirectURI != "" {
		form.Set("redirect_uri", redirectURI)
	}
	if len(e.config.Scopes) > 0 {
		form.Set("scope", strings.Join(e.config.Scopes, " "))
	}
	return e.call(ctx, form)
}

// Refresh exchanges a refresh token for a new pair.
func (e *Endpoint) Refresh(ctx context.Context, refreshToken string) (Pair, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return e.call(ctx, form)
}

func (e *Endpoint) call(ctx context.Context, form url.Values) (Pair, error) {
	if e.config.AuthMethod == "client_secret_post" {
		form.Set("client_id", e.config.ClientID)
		if e.config.ClientSecret != "" {
			form.Set("client_secret", e.config.ClientSecret)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Pair{}, fmt.Errorf("credential: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if e.config.AuthMethod == "client_secret_basic" {
		req.SetBasicAuth(url.QueryEscape(e.config.ClientID), url.QueryEscape(e.config.ClientSecret))
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Pair{}, fmt.Errorf("credential: token endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var oauthErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&oauthErr)
		if oauthErr.Error != "" {
			return Pair{}, fmt.Errorf("credential: token endpoint rejected: %s (%s)",
				oauthErr.Error, oauthErr.Description)
		}
		return Pair{}, fmt.Errorf("credential: token endpoint status %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Pair{}, fmt.Errorf("credential: decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return Pair{}, fmt.Errorf("credential: token response missing access_token")
	}

	pair := Pair{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
	if body.Scope != "" {
		pair.Scopes = strings.Fields(body.Scope)
	}
	switch {
	case body.ExpiresIn > 0:
		pair.ExpiresAt = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	default:
		// Some servers omit expires_in; if the access token is a JWT we
		// can still recover the expiry from its exp claim.
		pair.ExpiresAt = expiryFromToken(body.AccessToken)
	}

	return pair, nil
}

// tokenResponse is the RFC 6749 token endpoint response format.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Ensure Endpoint.Refresh satisfies RefreshFunc.
var _ RefreshFunc = (*Endpoint)(nil).Refresh

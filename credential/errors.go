package credential

import "errors"

// Sentinel errors for credential storage and refresh.
var (
	// ErrNotAuthenticated means the store holds no credential pair at all;
	// an initial token exchange is required.
	ErrNotAuthenticated = errors.New("credential: not authenticated")

	// ErrNoRefreshToken means the current pair cannot be refreshed.
	ErrNoRefreshToken = errors.New("credential: no refresh token")

	// ErrRefreshFailed means the authorization server rejected the refresh.
	// This is terminal: the store never retries a refresh internally.
	ErrRefreshFailed = errors.New("credential: refresh failed")
)

package config

import "errors"

// Validation errors.
var (
	ErrMissingBaseURL   = errors.New("config: api.base_url is required")
	ErrInvalidThreshold = errors.New("config: budget.throttle_threshold must be in (0, 1]")
	ErrInvalidBackoff   = errors.New("config: backoff.base_delay exceeds backoff.max_delay")
	ErrMissingClientID  = errors.New("config: oauth.client_id is required when oauth.token_url is set")
)

package credential

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshFunc exchanges a refresh token for a new pair. Implemented by
// Endpoint or by anything that can talk to the authorization server.
type RefreshFunc func(ctx context.Context, refreshToken string) (Pair, error)

// Store owns the live credential pair and serializes refreshes.
//
// Contract:
//   - Safe for concurrent use.
//   - The pair is replaced atomically; readers never see a partial update.
//   - Refresh is single-flight: while one refresh is underway, concurrent
//     callers wait for it and share its result instead of issuing duplicate
//     refresh calls. Some OAuth servers rotate the refresh token on every
//     exchange, so duplicate refreshes invalidate each other.
//   - No lock is held across the refresh network call.
type Store struct {
	refresh RefreshFunc
	now     func() time.Time

	mu    sync.RWMutex
	pair  Pair
	stale bool

	group singleflight.Group
}

// NewStore creates a store seeded with an initial pair (from the initial
// OAuth exchange). The pair may be zero if authentication happens later via
// Set.
func NewStore(initial Pair, refresh RefreshFunc) *Store {
	return &Store{
		refresh: refresh,
		now:     time.Now,
		pair:    initial,
	}
}

// Current returns the live pair without blocking. It does not refresh;
// callers that need a trustworthy pair use Fresh. Returns
// ErrNotAuthenticated if the store is empty.
func (s *Store) Current() (Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pair.IsZero() {
		return Pair{}, ErrNotAuthenticated
	}
	return s.pair, nil
}

// Fresh returns a pair that can be trusted on the wire, refreshing first if
// the current pair is stale (invalidated) or expired. This is what the
// orchestrator calls before attaching credentials.
func (s *Store) Fresh(ctx context.Context) (Pair, error) {
	s.mu.RLock()
	pair, stale := s.pair, s.stale
	s.mu.RUnlock()

	if pair.IsZero() {
		return Pair{}, ErrNotAuthenticated
	}
	if !stale && !pair.Expired(s.now()) {
		return pair, nil
	}
	return s.Refresh(ctx)
}

// Refresh exchanges the refresh token for a new pair. Concurrent callers
// share a single in-flight exchange. On failure the store reports
// ErrRefreshFailed and does not retry; re-authentication is required.
func (s *Store) Refresh(ctx context.Context) (Pair, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		return s.doRefresh(ctx)
	})
	if err != nil {
		return Pair{}, err
	}
	return v.(Pair), nil
}

func (s *Store) doRefresh(ctx context.Context) (Pair, error) {
	s.mu.RLock()
	current := s.pair
	s.mu.RUnlock()

	if current.IsZero() {
		return Pair{}, ErrNotAuthenticated
	}
	if current.RefreshToken == "" {
		return Pair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoRefreshToken)
	}
	if s.refresh == nil {
		return Pair{}, fmt.Errorf("%w: no refresh function configured", ErrRefreshFailed)
	}

	// Network call happens outside any lock.
	next, err := s.refresh(ctx, current.RefreshToken)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if next.IsZero() {
		return Pair{}, fmt.Errorf("%w: empty access token", ErrRefreshFailed)
	}
	// Servers that do not rotate the refresh token omit it from the
	// response; carry the old one forward.
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	s.mu.Lock()
	s.pair = next
	s.stale = false
	s.mu.Unlock()

	return next, nil
}

// Invalidate marks the current pair untrusted, so the next Fresh call
// refreshes before handing it out. Called when a request is rejected as
// unauthenticated despite a locally-valid pair.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Set replaces the pair, e.g. after an initial token exchange.
func (s *Store) Set(pair Pair) {
	s.mu.Lock()
	s.pair = pair
	s.stale = false
	s.mu.Unlock()
}

// Clear destroys the stored pair (logout/reset).
func (s *Store) Clear() {
	s.mu.Lock()
	s.pair = Pair{}
	s.stale = false
	s.mu.Unlock()
}

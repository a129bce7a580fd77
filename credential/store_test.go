package credential

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testPair(access string) Pair {
	return Pair{
		AccessToken:  access,
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestStore_Current(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s := NewStore(Pair{}, nil)
		if _, err := s.Current(); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("Current() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("seeded store", func(t *testing.T) {
		s := NewStore(testPair("tok-a"), nil)
		pair, err := s.Current()
		if err != nil {
			t.Fatalf("Current() error = %v", err)
		}
		if pair.AccessToken != "tok-a" {
			t.Errorf("AccessToken = %q, want tok-a", pair.AccessToken)
		}
	})
}

func TestStore_SingleFlightRefresh(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	refresh := func(ctx context.Context, refreshToken string) (Pair, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return testPair("tok-new"), nil
	}

	s := NewStore(testPair("tok-old"), refresh)

	const n = 20
	var wg sync.WaitGroup
	results := make([]Pair, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Refresh(context.Background())
		}(i)
	}

	// Let every goroutine pile onto the in-flight refresh before it
	// completes.
	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("authorization endpoint called %d times, want exactly 1", got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: Refresh() error = %v", i, errs[i])
		}
		if results[i].AccessToken != "tok-new" {
			t.Errorf("caller %d got %q, want shared result tok-new", i, results[i].AccessToken)
		}
	}
}

func TestStore_RefreshFailure(t *testing.T) {
	t.Run("no refresh token", func(t *testing.T) {
		s := NewStore(Pair{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil)
		_, err := s.Refresh(context.Background())
		if !errors.Is(err, ErrRefreshFailed) {
			t.Errorf("Refresh() error = %v, want ErrRefreshFailed", err)
		}
		if !errors.Is(err, ErrNoRefreshToken) {
			t.Errorf("Refresh() error = %v, want wrapped ErrNoRefreshToken", err)
		}
	})

	t.Run("authorization server rejects", func(t *testing.T) {
		rejected := errors.New("invalid_grant")
		s := NewStore(testPair("tok"), func(ctx context.Context, rt string) (Pair, error) {
			return Pair{}, rejected
		})

		_, err := s.Refresh(context.Background())
		if !errors.Is(err, ErrRefreshFailed) {
			t.Errorf("Refresh() error = %v, want ErrRefreshFailed", err)
		}
		if !errors.Is(err, rejected) {
			t.Errorf("Refresh() error = %v, want wrapped cause", err)
		}
	})
}

func TestStore_InvalidateForcesRefresh(t *testing.T) {
	var calls atomic.Int32
	s := NewStore(testPair("tok-old"), func(ctx context.Context, rt string) (Pair, error) {
		calls.Add(1)
		return testPair("tok-new"), nil
	})

	// A valid pair does not refresh.
	pair, err := s.Fresh(context.Background())
	if err != nil || pair.AccessToken != "tok-old" {
		t.Fatalf("Fresh() = %q, %v", pair.AccessToken, err)
	}
	if calls.Load() != 0 {
		t.Fatalf("refresh called %d times before invalidation", calls.Load())
	}

	s.Invalidate()

	pair, err = s.Fresh(context.Background())
	if err != nil {
		t.Fatalf("Fresh() error = %v", err)
	}
	if pair.AccessToken != "tok-new" {
		t.Errorf("Fresh() after Invalidate = %q, want tok-new", pair.AccessToken)
	}
	if calls.Load() != 1 {
		t.Errorf("refresh called %d times, want 1", calls.Load())
	}

	// The refreshed pair is trusted again.
	if _, err := s.Fresh(context.Background()); err != nil {
		t.Fatalf("Fresh() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("refresh called %d times after recovery, want still 1", calls.Load())
	}
}

func TestStore_ExpiredPairRefreshes(t *testing.T) {
	expired := Pair{
		AccessToken:  "tok-old",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	s := NewStore(expired, func(ctx context.Context, rt string) (Pair, error) {
		return testPair("tok-new"), nil
	})

	pair, err := s.Fresh(context.Background())
	if err != nil {
		t.Fatalf("Fresh() error = %v", err)
	}
	if pair.AccessToken != "tok-new" {
		t.Errorf("Fresh() = %q, want tok-new", pair.AccessToken)
	}
}

func TestStore_RefreshTokenCarriedForward(t *testing.T) {
	s := NewStore(testPair("tok-old"), func(ctx context.Context, rt string) (Pair, error) {
		// Server does not rotate the refresh token.
		return Pair{AccessToken: "tok-new", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	pair, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if pair.RefreshToken != "refresh-1" {
		t.Errorf("RefreshToken = %q, want carried-forward refresh-1", pair.RefreshToken)
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(testPair("tok"), nil)
	s.Clear()
	if _, err := s.Current(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Current() after Clear error = %v, want ErrNotAuthenticated", err)
	}
}

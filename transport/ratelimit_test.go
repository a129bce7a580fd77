package transport

import (
	"net/http"
	"testing"
	"time"
)

func TestParseRateLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no headers returns nil", func(t *testing.T) {
		if info := ParseRateLimit(http.Header{}, now); info != nil {
			t.Errorf("ParseRateLimit() = %+v, want nil", info)
		}
	})

	t.Run("x-prefixed headers", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-RateLimit-Limit", "200")
		h.Set("X-RateLimit-Remaining", "57")
		h.Set("X-RateLimit-Reset", "30")

		info := ParseRateLimit(h, now)
		if info == nil {
			t.Fatal("ParseRateLimit() = nil")
		}
		if info.Limit != 200 {
			t.Errorf("Limit = %d, want 200", info.Limit)
		}
		if info.Remaining != 57 {
			t.Errorf("Remaining = %d, want 57", info.Remaining)
		}
		if want := now.Add(30 * time.Second); !info.ResetAt.Equal(want) {
			t.Errorf("ResetAt = %v, want %v (delta form)", info.ResetAt, want)
		}
	})

	t.Run("draft headers preferred", func(t *testing.T) {
		h := http.Header{}
		h.Set("RateLimit-Remaining", "3")
		h.Set("X-RateLimit-Remaining", "99")

		info := ParseRateLimit(h, now)
		if info == nil || info.Remaining != 3 {
			t.Errorf("Remaining = %+v, want 3", info)
		}
	})

	t.Run("epoch reset", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-RateLimit-Reset", "1772452845") // an absolute Unix timestamp

		info := ParseRateLimit(h, now)
		if info == nil {
			t.Fatal("ParseRateLimit() = nil")
		}
		if want := time.Unix(1772452845, 0); !info.ResetAt.Equal(want) {
			t.Errorf("ResetAt = %v, want %v", info.ResetAt, want)
		}
	})

	t.Run("remaining zero is reported", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-RateLimit-Remaining", "0")

		info := ParseRateLimit(h, now)
		if info == nil || info.Remaining != 0 {
			t.Errorf("info = %+v, want Remaining 0", info)
		}
	})

	t.Run("absent remaining is -1", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-RateLimit-Limit", "200")

		info := ParseRateLimit(h, now)
		if info == nil || info.Remaining != -1 {
			t.Errorf("info = %+v, want Remaining -1", info)
		}
	})

	t.Run("retry-after only", func(t *testing.T) {
		h := http.Header{}
		h.Set("Retry-After", "45")

		info := ParseRateLimit(h, now)
		if info == nil || info.RetryAfter != 45*time.Second {
			t.Errorf("info = %+v, want RetryAfter 45s", info)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"zero seconds", "0", 0},
		{"negative", "-5", 0},
		{"garbage", "soon", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past http date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRetryAfter(tt.in, now); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

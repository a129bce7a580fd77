package transport

import (
	"net/http"
	"strconv"
	"time"
)

// RateLimitInfo holds rate-limit usage parsed from response headers.
// Fields the server did not report are left at their zero value, with
// Remaining using -1 to distinguish "absent" from "zero left".
type RateLimitInfo struct {
	// Limit is the server-reported window capacity, or 0 if absent.
	Limit int

	// Remaining is the number of requests left in the window, or -1 if
	// the server did not report it.
	Remaining int

	// ResetAt is when the window resets, zero if absent.
	ResetAt time.Time

	// RetryAfter is the server-instructed wait, zero if absent.
	RetryAfter time.Duration
}

// Header names checked by ParseRateLimit, in order of preference. The
// unprefixed forms are the IETF draft names; the X- forms are the de facto
// standard most APIs still emit.
var (
	limitHeaders     = []string{"RateLimit-Limit", "X-RateLimit-Limit", "X-Rate-Limit-Limit"}
	remainingHeaders = []string{"RateLimit-Remaining", "X-RateLimit-Remaining", "X-Rate-Limit-Remaining"}
	resetHeaders     = []string{"RateLimit-Reset", "X-RateLimit-Reset", "X-Rate-Limit-Reset"}
)

// ParseRateLimit extracts rate-limit usage from response headers. It returns
// nil when the response carries no usage information at all, so callers can
// fall back to local accounting.
func ParseRateLimit(h http.Header, now time.Time) *RateLimitInfo {
	if h == nil {
		return nil
	}

	info := RateLimitInfo{Remaining: -1}
	found := false

	if v, ok := firstHeader(h, limitHeaders); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			info.Limit = n
			found = true
		}
	}

	if v, ok := firstHeader(h, remainingHeaders); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			info.Remaining = n
			found = true
		}
	}

	if v, ok := firstHeader(h, resetHeaders); ok {
		if t, ok := parseReset(v, now); ok {
			info.ResetAt = t
			found = true
		}
	}

	if d := ParseRetryAfter(h.Get("Retry-After"), now); d > 0 {
		info.RetryAfter = d
		found = true
	}

	if !found {
		return nil
	}
	return &info
}

// ParseRetryAfter parses a Retry-After header value, which is either a
// delay in seconds or an HTTP date. Returns 0 for empty or malformed input.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// parseReset handles the two common reset encodings: an absolute Unix
// timestamp and a delta in seconds. Values small enough to be implausible
// as timestamps are treated as deltas.
func parseReset(v string, now time.Time) (time.Time, bool) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		if t, err := http.ParseTime(v); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if n < 0 {
		return time.Time{}, false
	}
	// A year's worth of seconds: anything below is a delta, not an epoch.
	const deltaCutoff = 365 * 24 * 3600
	if n < deltaCutoff {
		return now.Add(time.Duration(n) * time.Second), true
	}
	return time.Unix(n, 0), true
}

func firstHeader(h http.Header, names []string) (string, bool) {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v, true
		}
	}
	return "", false
}

package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Safety margin applied when checking expiry, so a token that is about to
// expire is refreshed before it fails on the wire.
const expirySkew = 30 * time.Second

// Pair is one access/refresh token pair. Pairs are immutable values: the
// store replaces the whole pair atomically, so readers never observe a torn
// update.
type Pair struct {
	// AccessToken is the opaque bearer token attached to requests.
	AccessToken string

	// RefreshToken exchanges for a new pair. May be empty, in which case
	// the pair cannot be refreshed.
	RefreshToken string

	// ExpiresAt is the absolute expiry instant. Zero means unknown; the
	// pair is then trusted until the server rejects it.
	ExpiresAt time.Time

	// Scopes are the account scope identifiers granted with the pair.
	Scopes []string
}

// IsZero reports whether the pair holds no credentials.
func (p Pair) IsZero() bool {
	return p.AccessToken == ""
}

// Expired reports whether the pair is past (or within expirySkew of) its
// expiry. Pairs with unknown expiry are never considered expired locally.
func (p Pair) Expired(now time.Time) bool {
	if p.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(p.ExpiresAt.Add(-expirySkew))
}

// expiryFromToken extracts the exp claim from a JWT access token without
// verifying its signature. Used as a fallback when the token response omits
// expires_in. Returns the zero time for opaque (non-JWT) tokens.
func expiryFromToken(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

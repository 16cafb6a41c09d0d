package upstream

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the auth state for one upstream login.  It is passed explicitly
// to every Client call.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         string
	Organization string

	// ExpiresAt comes from the access token's exp claim; zero when the token
	// is opaque or carries no exp.
	ExpiresAt time.Time
}

func newSession(r loginResponse) *Session {
	return &Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		Role:         r.Role,
		Organization: r.Organization,
		ExpiresAt:    tokenExpiry(r.AccessToken),
	}
}

// Expired reports whether the session should be replaced at now.  Sessions
// with an unknown expiry never expire; a rejected request clears them instead.
// skew renews slightly early so a token does not lapse mid-request.
func (s *Session) Expired(now time.Time, skew time.Duration) bool {
	if s == nil || s.AccessToken == "" {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(s.ExpiresAt)
}

// tokenExpiry reads exp without verifying the signature; the server holds the
// key and checks it on every request.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

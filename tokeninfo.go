package portal

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is metadata read from a bearer token without verifying its
// signature. The backend remains the sole authority on token validity; this
// exists for display and diagnostics only (e.g. showing "session expires
// at" in a settings view).
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseTokenInfo decodes the claims of a JWT without signature
// verification. A token the backend would reject can still parse cleanly
// here; never gate access on this.
func ParseTokenInfo(token string) (TokenInfo, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parse token: %w", err)
	}

	info := TokenInfo{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// ExpiresWithin reports whether the token carries an exp claim that falls
// inside the next d. Tokens without exp report false.
func (t TokenInfo) ExpiresWithin(d time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(t.ExpiresAt) < d
}

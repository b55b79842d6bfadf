package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session token claims the client relies on.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// ViewerID returns user_id, falling back to the standard subject claim.
func (c *Claims) ViewerID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// ExpiresAtTime returns the expiry, zero when the token does not expire.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ParseToken extracts claims from a session token. Подпись не проверяется:
// ее проверяет сервер, клиенту нужны только идентификатор и срок действия.
func ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ViewerID() == "" {
		return nil, fmt.Errorf("%w: token has no user id", ErrInvalidToken)
	}
	return claims, nil
}

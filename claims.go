package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by self-signed tokens. The account
// id travels in both sub and uid; uid survives middlewares that rewrite the
// registered claims.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// AccountID returns the bound account id.
func (c *SessionClaims) AccountID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

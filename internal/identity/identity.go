// Package identity decodes the claims embedded in the service's bearer token.
//
// Decoding never contacts the server and never verifies the signature: the
// client holds no key, and the remote service rejects tampered or expired
// tokens on the next request.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdash/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedCredential means the token is present but cannot be turned into an Identity.
var ErrMalformedCredential = errors.New("malformed credential")

type Claims struct {
	jwt.RegisteredClaims

	// UserID is the service's `id` claim; `sub` is used when it is absent.
	UserID string `json:"id"`
	Role   string `json:"role"`
}

func (c Claims) subject() string {
	if s := strings.TrimSpace(c.UserID); s != "" {
		return s
	}
	return strings.TrimSpace(c.Subject)
}

// Expiry returns the token's exp claim, if any.
func (c Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

var parser = jwt.NewParser()

// ParseClaims parses the token without verifying it.
func ParseClaims(token string) (Claims, error) {
	var c Claims
	token = strings.TrimSpace(token)
	if token == "" {
		return c, fmt.Errorf("%w: empty token", ErrMalformedCredential)
	}
	if _, _, err := parser.ParseUnverified(token, &c); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	return c, nil
}

// Decode returns a fully populated Identity or ErrMalformedCredential.
func Decode(token string) (model.Identity, error) {
	c, err := ParseClaims(token)
	if err != nil {
		return model.Identity{}, err
	}
	uid := c.subject()
	if uid == "" {
		return model.Identity{}, fmt.Errorf("%w: missing subject id", ErrMalformedCredential)
	}
	role, err := model.ParseRole(c.Role)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	return model.Identity{UserID: uid, Role: role}, nil
}

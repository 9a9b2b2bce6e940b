package jwtx

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type tags recorded in the "type" claim. Access tokens authorise
// individual requests; refresh tokens may only be exchanged for new access
// tokens.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Default token TTLs. Short-lived access tokens bound the damage of a leaked
// cookie; the refresh token carries the session lifetime.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// UserID carries the provider-stable identifier claim. Providers disagree on
// the wire type (GitHub sends a number, OIDC providers a string), so decoding
// normalises numbers to their integer decimal form.
type UserID string

func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*u = UserID(strconv.FormatInt(i, 10))
		return nil
	}
	*u = UserID(n.String())
	return nil
}

// Claims is the typed claim set for both token kinds. Profile fields are
// optional passenger data; refresh tokens carry them so a rotation can
// rebuild the principal without another provider round trip.
type Claims struct {
	jwt.RegisteredClaims

	// Provider-stable user identifier.
	UserID UserID `json:"id,omitempty"`

	// Login (username or email) — duplicated into the subject.
	Login string `json:"login,omitempty"`

	// Display name.
	Name string `json:"name,omitempty"`

	// Primary email address.
	Email string `json:"email,omitempty"`

	// Avatar or profile picture URL.
	AvatarURL string `json:"avatar_url,omitempty"`

	// TokenType distinguishes access from refresh tokens.
	TokenType string `json:"type,omitempty"`
}

// NewClaims builds a minimally-correct claim set for the given subject,
// type tag and lifetime.
func NewClaims(subject, tokenType string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	}
}

// ValidateExpiry ensures the token hasn't expired. Kept separate from
// signature verification so callers can tell "forged" apart from "stale".
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()
	if c.ExpiresAt == nil || now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// IsExpired reports whether the expiry claim lies in the past. Missing expiry
// counts as expired to fail safe.
func (c *Claims) IsExpired() bool {
	return c.ExpiresAt == nil || time.Now().UTC().After(c.ExpiresAt.Time)
}

package domain

import "time"

// RefreshToken models the stored refresh token record: the system of record
// for which sessions are still active. The record is keyed by the hashed
// token value, never by the raw credential.
type RefreshToken struct {
	ID        string
	TokenHash string // storage key: fingerprint of the raw token (or raw when hashing disabled)
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
	LastUsed  time.Time
}

// InvalidatedToken records an access token revoked before its natural
// expiry, typically at logout. Once expired the record is purged — an
// expired access token needs no explicit tracking.
type InvalidatedToken struct {
	ID            string
	Token         string // raw access token value (unique key)
	Username      string
	ExpiresAt     time.Time // copied from the token's own expiry claim
	InvalidatedAt time.Time
	Reason        string
}

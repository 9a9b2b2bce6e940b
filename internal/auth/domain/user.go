package domain

import "time"

// Default role granted to every local account.
const RoleUser = "user"

// User is a local email/password account. Only populated when local auth is
// enabled; provider-authenticated identities never touch this table.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id, PHC encoded
	Name         string
	AvatarURL    string
	Roles        []string
	CreatedAt    time.Time
}

// Principal projects the account into the canonical identity shape used by
// the token factory.
func (u User) Principal() Principal {
	return Principal{
		UserID:      u.ID,
		Username:    u.Email,
		DisplayName: u.Name,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
	}
}

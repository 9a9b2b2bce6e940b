package domain

// Principal is the resolved identity driving token claims. It is derived
// from provider attributes or a local account and only ever projected into
// token claims, never persisted directly.
type Principal struct {
	// UserID is the provider-stable identifier, normalised to a string.
	UserID string

	// Username is the login or email used as the token subject.
	Username string

	// Optional profile fields.
	DisplayName string
	Email       string
	AvatarURL   string
}

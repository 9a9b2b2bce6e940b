package provider

import (
	"fmt"

	"github.com/marufbep/authgate/internal/auth/domain"
)

// profilesFor orders the adapters so GitHub's flat claims win before the
// OIDC fallbacks are consulted.
func profilesFor(attrs Attributes) []Profile {
	return []Profile{GitHub{Attrs: attrs}, OIDC{Attrs: attrs}}
}

func first(attrs Attributes, get func(Profile) string) string {
	for _, p := range profilesFor(attrs) {
		if v := get(p); v != "" {
			return v
		}
	}
	return ""
}

// UserID resolves a stable identifier across provider shapes
// (id, then oid, then sub).
func UserID(attrs Attributes) string {
	return first(attrs, Profile.UserID)
}

// Login resolves the handle used as the token subject
// (login, then preferred_username, then upn, then email).
func Login(attrs Attributes) string {
	return first(attrs, Profile.Login)
}

// Name resolves a display name (name, then displayName).
func Name(attrs Attributes) string {
	return first(attrs, Profile.Name)
}

// Email resolves a primary address, accepting Entra's habit of putting it
// in preferred_username or an emails collection.
func Email(attrs Attributes) string {
	return first(attrs, Profile.Email)
}

// AvatarURL resolves a profile picture (avatar_url, then picture).
func AvatarURL(attrs Attributes) string {
	return first(attrs, Profile.AvatarURL)
}

// ResolveUsername picks the subject for minted tokens: login, else email,
// else the raw user identifier.
func ResolveUsername(attrs Attributes) string {
	if login := Login(attrs); login != "" {
		return login
	}
	if email := Email(attrs); email != "" {
		return email
	}
	return UserID(attrs)
}

// ResolvePrincipal projects provider attributes onto the session principal.
// Callers should run ValidateRequired first.
func ResolvePrincipal(attrs Attributes) domain.Principal {
	return domain.Principal{
		UserID:      UserID(attrs),
		Username:    ResolveUsername(attrs),
		DisplayName: Name(attrs),
		Email:       Email(attrs),
		AvatarURL:   AvatarURL(attrs),
	}
}

// ValidateRequired checks the minimum attribute set for a session: a stable
// identifier plus a login or email. Missing either means the granted scopes
// were too narrow.
func ValidateRequired(attrs Attributes) error {
	if UserID(attrs) == "" {
		return fmt.Errorf("%w: provider did not return a user identifier", ErrInsufficientScope)
	}
	if Login(attrs) == "" {
		return fmt.Errorf("%w: provider did not return a username or email", ErrInsufficientScope)
	}
	return nil
}

package provider_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marufbep/authgate/internal/auth/provider"
)

func githubAttrs() provider.Attributes {
	return provider.Attributes{
		"id":         float64(12345678),
		"login":      "octocat",
		"name":       "The Octocat",
		"email":      "octo@example.com",
		"avatar_url": "https://avatars.example.com/u/12345678",
	}
}

func entraAttrs() provider.Attributes {
	return provider.Attributes{
		"oid":                "aaaa-bbbb-cccc",
		"sub":                "opaque-pairwise-sub",
		"preferred_username": "octo@corp.example.com",
		"displayName":        "Octo Corp",
		"picture":            "https://graph.example.com/photo",
	}
}

func TestResolveGitHubShape(t *testing.T) {
	t.Parallel()

	attrs := githubAttrs()
	p := provider.ResolvePrincipal(attrs)

	require.Equal(t, "12345678", p.UserID)
	require.Equal(t, "octocat", p.Username)
	require.Equal(t, "The Octocat", p.DisplayName)
	require.Equal(t, "octo@example.com", p.Email)
	require.Equal(t, "https://avatars.example.com/u/12345678", p.AvatarURL)
}

func TestResolveEntraShape(t *testing.T) {
	t.Parallel()

	attrs := entraAttrs()
	p := provider.ResolvePrincipal(attrs)

	require.Equal(t, "aaaa-bbbb-cccc", p.UserID)
	require.Equal(t, "octo@corp.example.com", p.Username)
	require.Equal(t, "Octo Corp", p.DisplayName)
	// No email claim, but preferred_username carries an address.
	require.Equal(t, "octo@corp.example.com", p.Email)
	require.Equal(t, "https://graph.example.com/photo", p.AvatarURL)
}

func TestUserIDFallbackOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1", provider.UserID(provider.Attributes{"id": 1, "oid": "x", "sub": "y"}))
	require.Equal(t, "x", provider.UserID(provider.Attributes{"oid": "x", "sub": "y"}))
	require.Equal(t, "y", provider.UserID(provider.Attributes{"sub": "y"}))
	require.Equal(t, "", provider.UserID(provider.Attributes{}))
}

func TestLoginFallbackOrder(t *testing.T) {
	t.Parallel()

	attrs := provider.Attributes{
		"login":              "octocat",
		"preferred_username": "pu",
		"upn":                "upn",
		"email":              "e@example.com",
	}
	require.Equal(t, "octocat", provider.Login(attrs))

	delete(attrs, "login")
	require.Equal(t, "pu", provider.Login(attrs))

	delete(attrs, "preferred_username")
	require.Equal(t, "upn", provider.Login(attrs))

	delete(attrs, "upn")
	require.Equal(t, "e@example.com", provider.Login(attrs))
}

func TestEmailFromEmailsCollection(t *testing.T) {
	t.Parallel()

	attrs := provider.Attributes{
		"emails": []any{"first@example.com", "second@example.com"},
	}
	require.Equal(t, "first@example.com", provider.Email(attrs))
}

func TestResolveUsernameFallsBackToUserID(t *testing.T) {
	t.Parallel()

	attrs := provider.Attributes{"sub": "opaque-sub"}
	require.Equal(t, "opaque-sub", provider.ResolveUsername(attrs))
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	require.NoError(t, provider.ValidateRequired(githubAttrs()))

	err := provider.ValidateRequired(provider.Attributes{"login": "octocat"})
	require.ErrorIs(t, err, provider.ErrInsufficientScope)

	err = provider.ValidateRequired(provider.Attributes{"id": 42})
	require.ErrorIs(t, err, provider.ErrInsufficientScope)
}

func TestNumericIDHasNoExponent(t *testing.T) {
	t.Parallel()

	// encoding/json decodes numbers to float64; large GitHub ids must not
	// come out in scientific notation.
	attrs := provider.Attributes{"id": float64(98765432101)}
	require.Equal(t, "98765432101", provider.UserID(attrs))
}

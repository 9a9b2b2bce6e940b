package httpx

import (
	"net/http"
	"strings"
	"time"
)

// CookieFactory centralises construction of token cookies so the security
// flags stay consistent across login, refresh and logout responses.
type CookieFactory struct {
	// Secure marks cookies HTTPS-only. Off by default for local development.
	Secure bool

	// SameSite policy name: "Lax", "Strict" or "None".
	SameSite string
}

// Build returns an HttpOnly cookie rooted at / with Max-Age derived from
// maxAge. A zero maxAge yields Max-Age=0, instructing the browser to delete
// the cookie immediately.
func (f CookieFactory) Build(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: parseSameSite(f.SameSite),
		MaxAge:   int(maxAge.Seconds()),
	}
	if maxAge <= 0 {
		// net/http omits Max-Age when the field is zero; -1 forces Max-Age=0.
		c.MaxAge = -1
	}
	return c
}

// Clear returns a deletion cookie for name.
func (f CookieFactory) Clear(name string) *http.Cookie {
	return f.Build(name, "", 0)
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

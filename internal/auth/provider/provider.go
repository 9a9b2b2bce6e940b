// Package provider normalises the attribute maps returned by identity
// providers into a single Principal shape. Each provider family has its own
// adapter; resolution walks the adapters in order and takes the first
// non-empty answer per field.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInsufficientScope reports that a provider response is missing the
// attributes required to establish a session.
var ErrInsufficientScope = errors.New("insufficient_scope")

// Attributes is the raw claim/attribute map from a provider userinfo or
// ID-token payload.
type Attributes map[string]any

// Profile reads identity fields out of provider attributes. Implementations
// return "" for fields the provider does not supply.
type Profile interface {
	UserID() string
	Login() string
	Name() string
	Email() string
	AvatarURL() string
}

// Descriptor identifies a configured login option for the frontend.
type Descriptor struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// stringify renders an attribute value the way the wire intended: JSON
// numbers come back as float64, so integral identifiers must not pick up an
// exponent or fraction.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

func (a Attributes) str(key string) string {
	v, ok := a[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

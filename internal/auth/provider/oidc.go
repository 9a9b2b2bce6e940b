package provider

import "strings"

// OIDC reads standard OpenID Connect claims plus the Microsoft Entra
// variants (oid, upn, displayName, emails collection).
type OIDC struct {
	Attrs Attributes
}

func (o OIDC) UserID() string {
	if oid := o.Attrs.str("oid"); oid != "" {
		return oid
	}
	return o.Attrs.str("sub")
}

func (o OIDC) Login() string {
	if pu := o.Attrs.str("preferred_username"); pu != "" {
		return pu
	}
	if upn := o.Attrs.str("upn"); upn != "" {
		return upn
	}
	return o.Attrs.str("email")
}

func (o OIDC) Name() string {
	if name := o.Attrs.str("name"); name != "" {
		return name
	}
	return o.Attrs.str("displayName")
}

func (o OIDC) Email() string {
	if email := o.Attrs.str("email"); email != "" {
		return email
	}
	// Entra often carries the address in preferred_username instead of a
	// dedicated email claim.
	if pu := o.Attrs.str("preferred_username"); strings.Contains(pu, "@") {
		return pu
	}
	if emails, ok := o.Attrs["emails"].([]any); ok && len(emails) > 0 {
		return stringify(emails[0])
	}
	return ""
}

func (o OIDC) AvatarURL() string { return o.Attrs.str("picture") }

package provider

// GitHub reads the attribute shape of the GitHub user API: numeric id,
// login handle, optional name/email, avatar_url.
type GitHub struct {
	Attrs Attributes
}

func (g GitHub) UserID() string { return g.Attrs.str("id") }

func (g GitHub) Login() string { return g.Attrs.str("login") }

func (g GitHub) Name() string { return g.Attrs.str("name") }

func (g GitHub) Email() string { return g.Attrs.str("email") }

func (g GitHub) AvatarURL() string { return g.Attrs.str("avatar_url") }

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/store"
	"github.com/marufbep/authgate/pkg/cryptox"
	"github.com/marufbep/authgate/pkg/idx"
	"github.com/marufbep/authgate/pkg/slogx"
)

var (
	// ErrEmailInUse reports a signup against an already-registered address.
	ErrEmailInUse = errors.New("email_in_use")

	// ErrInvalidInput reports a signup payload that fails basic validation.
	ErrInvalidInput = errors.New("invalid_input")
)

// MinPasswordLen is the signup password floor.
const MinPasswordLen = 8

// LocalAuthService handles email/password accounts. Passwords are stored as
// argon2id hashes; login never reveals whether the address or the password
// was wrong.
type LocalAuthService struct {
	Users store.Users
}

// Register creates a local account and returns it.
func (s *LocalAuthService) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < MinPasswordLen {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLen)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Roles:        []string{domain.RoleUser},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailInUse
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("local user registered", "email", email)
	return u, nil
}

// Login verifies credentials. The boolean reports success; an unknown email
// and a wrong password are indistinguishable to the caller.
func (s *LocalAuthService) Login(ctx context.Context, email, password string) (domain.User, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		return domain.User{}, false, nil
	}
	return u, true, nil
}

package service

import (
	"context"
	"errors"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/internal/seclab/store"
	"github.com/secbyexample/seclab/pkg/cryptox"
)

// CredentialService maps usernames to user records and verifies passwords
// without ever exposing them. It performs no logging; the session layer
// reports outcomes to the security log.
type CredentialService struct {
	Store store.Store
}

// Register creates a new account. The password is immediately reduced to a
// salted bcrypt verifier; the plaintext is not retained anywhere. An empty
// role defaults to "user". Fails with ErrAlreadyExists when the username is
// taken, leaving the existing record untouched.
func (s *CredentialService) Register(ctx context.Context, username, password, role string) (domain.User, error) {
	if role == "" {
		role = domain.RoleUser
	}

	verifier, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().CreateUser(ctx, username, verifier, role)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrAlreadyExists
		}
		return domain.User{}, err
	}
	return u, nil
}

// VerifyPassword checks a password against the stored verifier. The
// comparison is constant-time over the derived hash. Fails with ErrNotFound
// for unknown usernames and ErrWrongPassword on mismatch.
func (s *CredentialService) VerifyPassword(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordVerifier); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrWrongPassword
		}
		return domain.User{}, err
	}

	return u, nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/internal/seclab/seclog"
	"github.com/secbyexample/seclab/internal/seclab/store"
	"github.com/secbyexample/seclab/pkg/cryptox"
	"github.com/secbyexample/seclab/pkg/jwtx"
	"github.com/secbyexample/seclab/pkg/slogx"
)

// SessionService orchestrates registration, login, authorization checks and
// refresh-token redemption. It is the only component holding cross-request
// state: the fingerprint of the one refresh token currently valid per user.
//
// Every time-based decision takes an explicit now so callers and tests
// control the clock. Security is an optional event sink; a nil logger
// disables reporting without changing behavior.
//
// Refresh does not rotate the refresh token: a redeemed token stays the
// current one until it expires or a newer login replaces it. Rotating on
// every redemption would close a replay window at the cost of invalidating
// concurrently-held copies; the laxer policy is kept deliberately and this
// comment is where that decision lives.
type SessionService struct {
	Creds    *CredentialService
	Tokens   *TokenService
	Store    store.Store
	Security *seclog.Logger

	// mu spans every check-then-set sequence on the refresh-token map so
	// two concurrent logins cannot leave a superseded token current.
	mu sync.Mutex
}

// Register creates an account. Delegates entirely to the credential store.
func (s *SessionService) Register(ctx context.Context, username, password, role string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Creds.Register(ctx, username, password, role)
}

// Login verifies credentials and, on success, mints a fresh access+refresh
// pair. The new refresh token becomes the user's only current one,
// invalidating whatever login came before. Every attempt is reported to the
// security log with its outcome; the password itself never leaves this call
// chain.
func (s *SessionService) Login(ctx context.Context, username, password, source string, now time.Time) (domain.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.Creds.VerifyPassword(ctx, username, password)
	if err != nil {
		s.Security.LoginAttempt(username, false, source)
		return domain.TokenPair{}, err
	}

	access, err := s.Tokens.IssueAccess(u, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Tokens.IssueRefresh(u.ID, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Store.RefreshTokens().SetRefreshToken(ctx, u.ID, cryptox.FingerprintToken(refresh)); err != nil {
		return domain.TokenPair{}, err
	}

	s.Security.LoginAttempt(username, true, source)
	slogx.FromContext(ctx).Debug("login", "username", username, "user_id", u.ID)

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Authorize validates an access token and, when requiredRole is non-empty,
// enforces the role claim. Verification failures propagate as the specific
// jwtx sentinel. Side-effect free apart from denial reporting, so it takes
// no lock.
func (s *SessionService) Authorize(ctx context.Context, accessToken string, now time.Time, requiredRole string) (jwtx.Claims, error) {
	claims, err := s.Tokens.Verify(accessToken, now)
	if err != nil {
		s.Security.PermissionDenied("", "access", "verify", accessToken)
		return jwtx.Claims{}, err
	}

	if claims.TokenType != jwtx.TokenTypeAccess {
		s.Security.PermissionDenied(claims.Username, "access", "token_type", accessToken)
		return jwtx.Claims{}, ErrWrongTokenType
	}

	if requiredRole != "" && claims.Role != requiredRole {
		s.Security.PermissionDenied(claims.Username, requiredRole, "role_check", accessToken)
		return jwtx.Claims{}, ErrInsufficientRole
	}

	return claims, nil
}

// Refresh redeems a refresh token for a new access token. The presented
// token must verify, be of type refresh, and match the stored fingerprint
// exactly; a token superseded by a newer login fails with ErrStaleToken.
// Username and role are re-read from the store so the new access token
// reflects the current record.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, err := s.Tokens.Verify(refreshToken, now)
	if err != nil {
		return "", err
	}

	if claims.TokenType != jwtx.TokenTypeRefresh {
		return "", ErrWrongTokenType
	}

	current, err := s.Store.RefreshTokens().GetRefreshToken(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrStaleToken
		}
		return "", err
	}
	if current != cryptox.FingerprintToken(refreshToken) {
		s.Security.SuspiciousActivity("superseded refresh token presented", map[string]any{
			"user_id":  claims.UserID,
			"token_fp": cryptox.ShortFingerprint(refreshToken),
		})
		return "", ErrStaleToken
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	slogx.FromContext(ctx).Debug("refresh", "user_id", u.ID)
	return s.Tokens.IssueAccess(u, now)
}

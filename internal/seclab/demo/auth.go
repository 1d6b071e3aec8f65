package demo

import (
	"context"
	"io"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/app"
	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/pkg/jwtx"
)

// RunAuth walks through the token lifecycle: login, authorization, role
// checks, tampering and refresh.
func RunAuth(ctx context.Context, w io.Writer, a *app.Application) error {
	title(w, "Authentication and sessions")

	now := time.Now()
	sessions := a.Sessions

	section(w, "Accounts")
	if _, err := sessions.Register(ctx, "alice", "S3cure-Pass!", domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := sessions.Register(ctx, "bob", "An0ther-Pass!", domain.RoleUser); err != nil {
		return err
	}
	ok(w, "registered alice (admin) and bob (user)")

	section(w, "Login")
	if _, err := sessions.Login(ctx, "alice", "wrong-password", "demo", now); err != nil {
		fail(w, "wrong password: %v", err)
	}
	pair, err := sessions.Login(ctx, "alice", "S3cure-Pass!", "demo", now)
	if err != nil {
		return err
	}
	ok(w, "access token:  %s", truncate(pair.AccessToken, 48))
	ok(w, "refresh token: %s", truncate(pair.RefreshToken, 48))
	note(w, "tokens are signed, not encrypted; never put secrets in claims")

	section(w, "Authorization")
	if claims, err := sessions.Authorize(ctx, pair.AccessToken, now, domain.RoleAdmin); err == nil {
		ok(w, "admin access granted to %s (user %d)", claims.Username, claims.UserID)
	}

	bobPair, err := sessions.Login(ctx, "bob", "An0ther-Pass!", "demo", now)
	if err != nil {
		return err
	}
	if _, err := sessions.Authorize(ctx, bobPair.AccessToken, now, domain.RoleAdmin); err != nil {
		fail(w, "bob asking for admin: %v", err)
	}

	section(w, "Tampering")
	if leaked, err := jwtx.DecodeUnverified(pair.AccessToken); err == nil {
		warn(w, "anyone holding the token can read its claims: user_id=%d role=%s", leaked.UserID, leaked.Role)
		note(w, "decoding needs no secret; only verifying the signature does")
	}
	forged := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if _, err := sessions.Authorize(ctx, forged, now, domain.RoleUser); err != nil {
		fail(w, "modified token: %v", err)
		note(w, "the HMAC signature covers header and claims; one flipped byte kills it")
	}

	section(w, "Expiry and refresh")
	later := now.Add(a.Cfg.AccessTTL + time.Minute)
	if _, err := sessions.Authorize(ctx, pair.AccessToken, later, ""); err != nil {
		fail(w, "after %s: %v", a.Cfg.AccessTTL+time.Minute, err)
	}
	fresh, err := sessions.Refresh(ctx, pair.RefreshToken, later)
	if err != nil {
		return err
	}
	if _, err := sessions.Authorize(ctx, fresh, later, ""); err == nil {
		ok(w, "refreshed access token works without re-entering the password")
	}

	section(w, "Superseded refresh tokens")
	if _, err := sessions.Login(ctx, "alice", "S3cure-Pass!", "demo", later); err != nil {
		return err
	}
	if _, err := sessions.Refresh(ctx, pair.RefreshToken, later.Add(time.Minute)); err != nil {
		fail(w, "old refresh token after a new login: %v", err)
		note(w, "one refresh token per user; a new login invalidates the previous one")
	}

	return nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/internal/seclab/store"
	"github.com/secbyexample/seclab/internal/seclab/store/drivers/memory"
	"github.com/secbyexample/seclab/internal/seclab/store/drivers/sqlite"
	"github.com/secbyexample/seclab/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newSession(t *testing.T, st store.Store) *SessionService {
	t.Helper()

	signer, err := jwtx.NewHS256("session-test-secret")
	require.NoError(t, err)

	return &SessionService{
		Creds:  &CredentialService{Store: st},
		Tokens: &TokenService{Signer: signer},
		Store:  st,
	}
}

func newMemorySession(t *testing.T) *SessionService {
	return newSession(t, memory.NewStore())
}

func TestRegisterAndVerifyPassword(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	u, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "alice", u.Username)
	require.NotEqual(t, "Str0ngP@ss", u.PasswordVerifier,
		"verifier must never equal the plaintext")

	got, err := s.Creds.VerifyPassword(ctx, "alice", "Str0ngP@ss")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestRegister_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	a, err := s.Register(ctx, "first", "pw-one-111", "")
	require.NoError(t, err)
	b, err := s.Register(ctx, "second", "pw-two-222", "")
	require.NoError(t, err)

	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(2), b.ID)
	require.Equal(t, domain.RoleUser, a.Role, "empty role defaults to user")
}

func TestRegister_DuplicateLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "original-pass", domain.RoleUser)
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "other-pass", domain.RoleAdmin)
	require.ErrorIs(t, err, ErrAlreadyExists)

	// The failed call must not have touched the stored record.
	u, err := s.Creds.VerifyPassword(ctx, "alice", "original-pass")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, u.Role)

	_, err = s.Creds.VerifyPassword(ctx, "alice", "other-pass")
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestVerifyPassword_Failures(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Creds.VerifyPassword(ctx, "nobody", "whatever")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Creds.VerifyPassword(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrWrongPassword)
	})
}

func TestLogin_IssuesVerifiablePair(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)

	pair, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)

	claims, err := s.Authorize(ctx, pair.AccessToken, t0.Add(time.Minute), "")
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, domain.RoleUser, claims.Role)
	require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
}

func TestLogin_WrongPasswordIssuesNothing(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)

	// A prior successful login holds the current refresh token.
	pair, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0)
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", "wrong", "test", t0.Add(time.Minute))
	require.ErrorIs(t, err, ErrWrongPassword)

	_, err = s.Login(ctx, "nobody", "whatever", "test", t0.Add(time.Minute))
	require.ErrorIs(t, err, ErrNotFound)

	// The stored refresh token from the successful login is unaffected.
	access, err := s.Refresh(ctx, pair.RefreshToken, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, access)
}

func TestAuthorize_Expiry(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)
	pair, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0)
	require.NoError(t, err)

	_, err = s.Authorize(ctx, pair.AccessToken, t0.Add(60*time.Second), "")
	require.NoError(t, err)

	// Access TTL is 15 minutes; one hour later the token is expired.
	_, err = s.Authorize(ctx, pair.AccessToken, t0.Add(time.Hour), "")
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestAuthorize_RoleEnforcement(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "admin", "admin-pass-1", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = s.Register(ctx, "alice", "user-pass-1", domain.RoleUser)
	require.NoError(t, err)

	adminPair, err := s.Login(ctx, "admin", "admin-pass-1", "test", t0)
	require.NoError(t, err)
	userPair, err := s.Login(ctx, "alice", "user-pass-1", "test", t0)
	require.NoError(t, err)

	_, err = s.Authorize(ctx, adminPair.AccessToken, t0.Add(time.Minute), domain.RoleAdmin)
	require.NoError(t, err)

	_, err = s.Authorize(ctx, userPair.AccessToken, t0.Add(time.Minute), domain.RoleAdmin)
	require.ErrorIs(t, err, ErrInsufficientRole)

	_, err = s.Authorize(ctx, userPair.AccessToken, t0.Add(time.Minute), "")
	require.NoError(t, err)
}

func TestAuthorize_RejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)
	pair, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0)
	require.NoError(t, err)

	_, err = s.Authorize(ctx, pair.RefreshToken, t0.Add(time.Minute), "")
	require.ErrorIs(t, err, ErrWrongTokenType)
}

func TestRefresh_RenewsAccess(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)
	pair, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0)
	require.NoError(t, err)

	// An hour later the original access token is dead but the refresh
	// token buys a new one, valid for a full TTL from the refresh time.
	later := t0.Add(time.Hour)
	access, err := s.Refresh(ctx, pair.RefreshToken, later)
	require.NoError(t, err)

	claims, err := s.Authorize(ctx, access, later.Add(14*time.Minute), "")
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)

	_, err = s.Authorize(ctx, access, later.Add(16*time.Minute), "")
	require.ErrorIs(t, err, jwtx.ErrExpired)

	// The refresh token itself was not rotated and can be used again.
	_, err = s.Refresh(ctx, pair.RefreshToken, later.Add(time.Minute))
	require.NoError(t, err)
}

func TestRefresh_Failures(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)
	pair, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0)
	require.NoError(t, err)

	t.Run("access token is the wrong kind", func(t *testing.T) {
		_, err := s.Refresh(ctx, pair.AccessToken, t0.Add(time.Minute))
		require.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		_, err := s.Refresh(ctx, pair.RefreshToken, t0.Add(8*24*time.Hour))
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := s.Refresh(ctx, "not.a.token", t0.Add(time.Minute))
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestRefresh_SupersededTokenIsStale(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)

	first, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0)
	require.NoError(t, err)

	// A second login a minute later supersedes the first refresh token.
	second, err := s.Login(ctx, "alice", "Str0ngP@ss", "test", t0.Add(time.Minute))
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = s.Refresh(ctx, first.RefreshToken, t0.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrStaleToken)

	_, err = s.Refresh(ctx, second.RefreshToken, t0.Add(2*time.Minute))
	require.NoError(t, err)
}

func TestRefresh_NoPriorLoginIsStale(t *testing.T) {
	ctx := context.Background()
	s := newMemorySession(t)

	_, err := s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)

	// Mint a refresh token directly, bypassing login, so nothing is stored.
	refresh, err := s.Tokens.IssueRefresh(1, t0)
	require.NoError(t, err)

	_, err = s.Refresh(ctx, refresh, t0.Add(time.Minute))
	require.ErrorIs(t, err, ErrStaleToken)
}

// The full walkthrough from the module's demo, run against the sqlite
// driver to exercise migrations and the persistent store end to end.
func TestEndToEnd_SQLite(t *testing.T) {
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	s := newSession(t, st)

	_, err = s.Register(ctx, "alice", "Str0ngP@ss", domain.RoleUser)
	require.NoError(t, err)

	pair, err := s.Login(ctx, "alice", "Str0ngP@ss", "e2e", t0)
	require.NoError(t, err)

	_, err = s.Authorize(ctx, pair.AccessToken, t0.Add(60*time.Second), "")
	require.NoError(t, err)

	_, err = s.Authorize(ctx, pair.AccessToken, t0.Add(3600*time.Second), "")
	require.ErrorIs(t, err, jwtx.ErrExpired)

	access, err := s.Refresh(ctx, pair.RefreshToken, t0.Add(3600*time.Second))
	require.NoError(t, err)

	_, err = s.Authorize(ctx, access, t0.Add(3600*time.Second).Add(14*time.Minute), "")
	require.NoError(t, err)
}

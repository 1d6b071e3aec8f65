package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/internal/seclab/store"
	"github.com/secbyexample/seclab/internal/seclab/store/drivers/memory"
	"github.com/secbyexample/seclab/internal/seclab/store/drivers/sqlite"
	"github.com/secbyexample/seclab/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Both drivers must satisfy the same observable contract, so every case
// below runs against each.
func drivers(t *testing.T) map[string]store.Store {
	t.Helper()

	sq, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, sq.ApplyMigrations())
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]store.Store{
		"memory": memory.NewStore(),
		"sqlite": sq,
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()

	for name, st := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			u1, err := st.Users().CreateUser(ctx, "alice", "verifier-a", "user")
			require.NoError(t, err)
			u2, err := st.Users().CreateUser(ctx, "bob", "verifier-b", "admin")
			require.NoError(t, err)

			require.Equal(t, int64(1), u1.ID, "ids are a monotonic counter")
			require.Equal(t, int64(2), u2.ID)

			t.Run("duplicate username", func(t *testing.T) {
				_, err := st.Users().CreateUser(ctx, "alice", "other", "user")
				require.ErrorIs(t, err, store.ErrAlreadyExists)
			})

			t.Run("lookup by name and id", func(t *testing.T) {
				byName, err := st.Users().GetUserByUsername(ctx, "bob")
				require.NoError(t, err)
				require.Equal(t, u2.ID, byName.ID)
				require.Equal(t, "admin", byName.Role)

				byID, err := st.Users().GetUserByID(ctx, u1.ID)
				require.NoError(t, err)
				require.Equal(t, "alice", byID.Username)
			})

			t.Run("missing user", func(t *testing.T) {
				_, err := st.Users().GetUserByUsername(ctx, "nobody")
				require.ErrorIs(t, err, store.ErrNotFound)
				_, err = st.Users().GetUserByID(ctx, 999)
				require.ErrorIs(t, err, store.ErrNotFound)
			})

			count, err := st.Users().CountUsers(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(2), count)
		})
	}
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	for name, st := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Users().CreateUser(ctx, "alice", "verifier", "user")
			require.NoError(t, err)

			_, err = st.RefreshTokens().GetRefreshToken(ctx, 1)
			require.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, st.RefreshTokens().SetRefreshToken(ctx, 1, "hash-one"))
			hash, err := st.RefreshTokens().GetRefreshToken(ctx, 1)
			require.NoError(t, err)
			require.Equal(t, "hash-one", hash)

			// A second set overwrites; only the latest is current.
			require.NoError(t, st.RefreshTokens().SetRefreshToken(ctx, 1, "hash-two"))
			hash, err = st.RefreshTokens().GetRefreshToken(ctx, 1)
			require.NoError(t, err)
			require.Equal(t, "hash-two", hash)

			require.NoError(t, st.RefreshTokens().DeleteRefreshToken(ctx, 1))
			_, err = st.RefreshTokens().GetRefreshToken(ctx, 1)
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestConsents(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	for name, st := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			c1 := domain.Consent{
				ID:          idx.NewAt(base).String(),
				UserID:      "user_123",
				Purpose:     "marketing",
				Status:      domain.ConsentPending,
				RequestedAt: base,
			}
			c2 := domain.Consent{
				ID:          idx.NewAt(base.Add(time.Minute)).String(),
				UserID:      "user_123",
				Purpose:     "analytics",
				Status:      domain.ConsentPending,
				RequestedAt: base.Add(time.Minute),
			}
			require.NoError(t, st.Consents().CreateConsent(ctx, c1))
			require.NoError(t, st.Consents().CreateConsent(ctx, c2))

			t.Run("duplicate id", func(t *testing.T) {
				require.ErrorIs(t, st.Consents().CreateConsent(ctx, c1), store.ErrAlreadyExists)
			})

			t.Run("update status", func(t *testing.T) {
				decided := base.Add(time.Hour)
				c1.Status = domain.ConsentGranted
				c1.DecidedAt = &decided
				require.NoError(t, st.Consents().UpdateConsent(ctx, c1))

				got, err := st.Consents().GetConsent(ctx, c1.ID)
				require.NoError(t, err)
				require.Equal(t, domain.ConsentGranted, got.Status)
				require.NotNil(t, got.DecidedAt)
			})

			t.Run("update missing record", func(t *testing.T) {
				missing := c1
				missing.ID = idx.NewAt(base.Add(2 * time.Minute)).String()
				require.ErrorIs(t, st.Consents().UpdateConsent(ctx, missing), store.ErrNotFound)
			})

			t.Run("list is oldest first", func(t *testing.T) {
				list, err := st.Consents().ListConsentsByUser(ctx, "user_123")
				require.NoError(t, err)
				require.Len(t, list, 2)
				require.Equal(t, "marketing", list[0].Purpose)
				require.Equal(t, "analytics", list[1].Purpose)
			})

			t.Run("erasure", func(t *testing.T) {
				require.NoError(t, st.Consents().DeleteConsentsByUser(ctx, "user_123"))
				list, err := st.Consents().ListConsentsByUser(ctx, "user_123")
				require.NoError(t, err)
				require.Empty(t, list)
			})
		})
	}
}

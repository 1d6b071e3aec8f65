package service

import (
	"time"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/pkg/jwtx"
)

// TokenService mints and validates the two token kinds. Both share one
// symmetric secret and algorithm, held by the signer; the TTLs are fixed at
// construction. It holds no per-request state.
type TokenService struct {
	Signer     *jwtx.HS256
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// IssueAccess mints a short-lived access token carrying the user's identity
// and role.
func (s *TokenService) IssueAccess(u domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Username, u.Role, s.accessTTL(), now)
	return s.Signer.Sign(claims)
}

// IssueRefresh mints a long-lived refresh token carrying only the user id.
func (s *TokenService) IssueRefresh(userID int64, now time.Time) (string, error) {
	claims := jwtx.NewRefreshClaims(userID, s.refreshTTL(), now)
	return s.Signer.Sign(claims)
}

// Verify validates signature and expiry against the supplied clock and
// returns the claims. It does not check token_type; callers verify the kind
// they expect.
func (s *TokenService) Verify(token string, now time.Time) (jwtx.Claims, error) {
	return s.Signer.Verify(token, now)
}

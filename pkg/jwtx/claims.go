package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type markers carried in the token_type claim. Verify does not check
// them; callers decide which kind they are willing to accept.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Default token TTLs. Access tokens are short-lived so a leaked one has a
// small blast radius; refresh tokens trade that off for user convenience.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the claim set embedded in every token this package signs. Both
// token kinds share the shape; refresh tokens simply leave the identity
// fields empty.
type Claims struct {
	jwt.RegisteredClaims

	// UserID identifies the subject account.
	UserID int64 `json:"user_id"`

	// Username and Role are carried on access tokens so protected callers
	// can authorize without a user lookup.
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`

	// TokenType is "access" or "refresh".
	TokenType string `json:"token_type"`
}

// NewAccessClaims builds the claim set for a short-lived access token.
func NewAccessClaims(userID int64, username, role string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		Username:  username,
		Role:      role,
		TokenType: TokenTypeAccess,
	}
}

// NewRefreshClaims builds the claim set for a long-lived refresh token.
// Only the user id is embedded; username and role are re-read from the
// credential store when the token is redeemed, so role changes take effect
// on the next refresh.
func NewRefreshClaims(userID int64, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: TokenTypeRefresh,
	}
}

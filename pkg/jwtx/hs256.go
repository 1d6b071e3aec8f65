package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret reports a missing signing secret at construction time.
	// This is a configuration fault, not a per-request failure.
	ErrNoSecret = errors.New("jwtx: signing secret is empty")

	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// HS256 signs and verifies tokens with a single shared symmetric secret.
// Both token kinds use the same secret and algorithm, so one instance serves
// the whole process. The secret is fixed at construction and never mutated.
type HS256 struct {
	secret []byte
}

// NewHS256 constructs a signer/verifier around the given secret. An empty
// secret is refused here so that misconfiguration surfaces at startup rather
// than as unverifiable tokens later.
func NewHS256(secret string) (*HS256, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &HS256{secret: []byte(secret)}, nil
}

// Alg returns the JWA identifier of the signing algorithm.
func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign produces the compact three-part serialization of claims.
func (h *HS256) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses a compact token and returns its claims.
//
// The signature is checked before any claim is trusted, including the expiry,
// so a forged exp can never turn a tampered token into a merely "expired"
// one. Expiry is evaluated against the supplied now, letting callers and
// tests inject arbitrary clocks.
//
// The token_type claim is deliberately NOT validated here; the same verifier
// serves access and refresh tokens and callers check the type they expect.
func (h *HS256) Verify(tokenString string, now time.Time) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrAlgMismatch
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		default:
			return Claims{}, fmt.Errorf("jwtx: verify: %w", err)
		}
	}

	return claims, nil
}

// DecodeUnverified extracts claims WITHOUT checking the signature. Never use
// the result for authorization; it exists so demos can show what a token
// payload exposes to anyone holding it.
func DecodeUnverified(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(tokenString, &claims)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}

package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest bcrypt workload factor we accept. Anything below
// this is too cheap to resist offline brute force on modern hardware.
const MinCost = 10

// ErrPasswordMismatch is returned when a password does not match its verifier.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// HashPassword derives a salted bcrypt verifier from a plaintext password.
// The salt is generated internally and embedded in the returned string, so
// the output is self-describing and safe to store as-is.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, bcrypt.DefaultCost)
}

// HashPasswordCost is HashPassword with an explicit workload factor. Costs
// below MinCost are rejected rather than silently clamped.
func HashPasswordCost(password string, cost int) (string, error) {
	if cost < MinCost {
		return "", fmt.Errorf("cryptox: bcrypt cost %d below minimum %d", cost, MinCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt
// verifier. The comparison runs in constant time over the derived hash.
// Returns ErrPasswordMismatch on mismatch; any other error means the stored
// verifier itself is unusable.
func VerifyPassword(password, verifier string) error {
	err := bcrypt.CompareHashAndPassword([]byte(verifier), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("cryptox: verify password: %w", err)
}

// GeneratePassword returns a random 12-character alphanumeric password.
// Used by demos and backup-code generation, not by the core auth flow.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 12
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: generate password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}

package store

import (
	"context"
	"errors"

	"github.com/secbyexample/seclab/internal/seclab/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (memory, sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
//
// Drivers only guarantee per-call consistency. Check-then-set sequences
// (register, login, refresh) are serialized by the session layer's mutex,
// so the interface deliberately has no transaction surface.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Consents() Consents

	// Close releases any underlying resources.
	Close() error
}

type Users interface {
	// CreateUser inserts a new user and assigns the next sequential id.
	// Returns ErrAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, username, passwordVerifier, role string) (domain.User, error)

	// GetUserByUsername is used during password verification.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByID resolves the subject of a verified refresh token.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}

type RefreshTokens interface {
	// SetRefreshToken stores the fingerprint of the latest refresh token
	// for a user, overwriting any previous value. At most one refresh
	// token per user is ever considered current.
	SetRefreshToken(ctx context.Context, userID int64, tokenHash string) error

	// GetRefreshToken returns the stored fingerprint, or ErrNotFound if
	// the user has never logged in.
	GetRefreshToken(ctx context.Context, userID int64) (string, error)

	// DeleteRefreshToken drops the stored fingerprint (logout-style
	// invalidation; not part of the core session flow).
	DeleteRefreshToken(ctx context.Context, userID int64) error
}

type Consents interface {
	// CreateConsent writes a new consent record.
	CreateConsent(ctx context.Context, c domain.Consent) error

	// GetConsent returns a consent record by id.
	GetConsent(ctx context.Context, id string) (domain.Consent, error)

	// UpdateConsent replaces a consent record's status and decision
	// timestamps.
	UpdateConsent(ctx context.Context, c domain.Consent) error

	// ListConsentsByUser returns all consent records for a subject,
	// oldest first.
	ListConsentsByUser(ctx context.Context, userID string) ([]domain.Consent, error)

	// DeleteConsentsByUser removes every consent record for a subject
	// (right to erasure).
	DeleteConsentsByUser(ctx context.Context, userID string) error
}

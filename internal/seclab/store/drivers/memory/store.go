// Package memory provides the default in-process store. State lives for the
// process lifetime only, which is exactly what the didactic auth subsystem
// asks for.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/internal/seclab/store"
)

type Store struct {
	mu sync.RWMutex

	nextUserID    int64
	usersByName   map[string]domain.User
	usersByID     map[int64]domain.User
	refreshByUser map[int64]string
	consents      map[string]domain.Consent
}

func NewStore() *Store {
	return &Store{
		usersByName:   make(map[string]domain.User),
		usersByID:     make(map[int64]domain.User),
		refreshByUser: make(map[int64]string),
		consents:      make(map[string]domain.Consent),
	}
}

func (s *Store) Users() store.Users                 { return (*usersRepo)(s) }
func (s *Store) RefreshTokens() store.RefreshTokens { return (*refreshTokensRepo)(s) }
func (s *Store) Consents() store.Consents           { return (*consentsRepo)(s) }

func (s *Store) Close() error { return nil }

type usersRepo Store

func (r *usersRepo) CreateUser(_ context.Context, username, passwordVerifier, role string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByName[username]; exists {
		return domain.User{}, store.ErrAlreadyExists
	}

	r.nextUserID++
	u := domain.User{
		ID:               r.nextUserID,
		Username:         username,
		PasswordVerifier: passwordVerifier,
		Role:             role,
		CreatedAt:        time.Now().UTC(),
	}
	r.usersByName[username] = u
	r.usersByID[u.ID] = u
	return u, nil
}

func (r *usersRepo) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.usersByName[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(_ context.Context, id int64) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.usersByID[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) CountUsers(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.usersByID)), nil
}

type refreshTokensRepo Store

func (r *refreshTokensRepo) SetRefreshToken(_ context.Context, userID int64, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshByUser[userID] = tokenHash
	return nil
}

func (r *refreshTokensRepo) GetRefreshToken(_ context.Context, userID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hash, ok := r.refreshByUser[userID]
	if !ok {
		return "", store.ErrNotFound
	}
	return hash, nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refreshByUser, userID)
	return nil
}

type consentsRepo Store

func (r *consentsRepo) CreateConsent(_ context.Context, c domain.Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.consents[c.ID]; exists {
		return store.ErrAlreadyExists
	}
	r.consents[c.ID] = c
	return nil
}

func (r *consentsRepo) GetConsent(_ context.Context, id string) (domain.Consent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.consents[id]
	if !ok {
		return domain.Consent{}, store.ErrNotFound
	}
	return c, nil
}

func (r *consentsRepo) UpdateConsent(_ context.Context, c domain.Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.consents[c.ID]; !ok {
		return store.ErrNotFound
	}
	r.consents[c.ID] = c
	return nil
}

func (r *consentsRepo) ListConsentsByUser(_ context.Context, userID string) ([]domain.Consent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Consent
	for _, c := range r.consents {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	// ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *consentsRepo) DeleteConsentsByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.consents {
		if c.UserID == userID {
			delete(r.consents, id)
		}
	}
	return nil
}

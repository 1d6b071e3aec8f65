// Package consent implements the data-protection tooling: consent records
// keyed by subject and purpose, and the data-subject rights (access,
// erasure, anonymization) over collected personal data.
package consent

import (
	"context"
	"errors"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/internal/seclab/seclog"
	"github.com/secbyexample/seclab/internal/seclab/store"
	"github.com/secbyexample/seclab/pkg/idx"
)

var (
	ErrNotFound       = errors.New("consent: not found")
	ErrAlreadyDecided = errors.New("consent: already decided")
)

// Manager tracks which processing purposes a subject has agreed to. Consent
// must be requested before it can be recorded, and a granted consent can be
// withdrawn at any time; nothing is ever processed on a pending or denied
// record.
type Manager struct {
	Store    store.Store
	Security *seclog.Logger
}

// RequestConsent opens one pending record per purpose and returns them.
// IDs are ULIDs, so records sort by request time.
func (m *Manager) RequestConsent(ctx context.Context, userID string, purposes []string, now time.Time) ([]domain.Consent, error) {
	records := make([]domain.Consent, 0, len(purposes))
	for _, purpose := range purposes {
		c := domain.Consent{
			ID:          idx.NewAt(now).String(),
			UserID:      userID,
			Purpose:     purpose,
			Status:      domain.ConsentPending,
			RequestedAt: now,
		}
		if err := m.Store.Consents().CreateConsent(ctx, c); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, nil
}

// RecordConsent resolves a pending record to granted or denied. Deciding a
// record twice is refused: the first answer stands until withdrawn.
func (m *Manager) RecordConsent(ctx context.Context, consentID string, granted bool, now time.Time) (domain.Consent, error) {
	c, err := m.Store.Consents().GetConsent(ctx, consentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Consent{}, ErrNotFound
		}
		return domain.Consent{}, err
	}

	if c.Status != domain.ConsentPending {
		return domain.Consent{}, ErrAlreadyDecided
	}

	c.Status = domain.ConsentDenied
	if granted {
		c.Status = domain.ConsentGranted
	}
	decided := now
	c.DecidedAt = &decided

	if err := m.Store.Consents().UpdateConsent(ctx, c); err != nil {
		return domain.Consent{}, err
	}
	return c, nil
}

// CheckConsent reports whether the subject currently has a granted,
// non-withdrawn consent for the purpose. The latest record for the purpose
// wins, so a re-request after withdrawal works naturally.
func (m *Manager) CheckConsent(ctx context.Context, userID, purpose string) (bool, error) {
	list, err := m.Store.Consents().ListConsentsByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	granted := false
	for _, c := range list { // oldest first; the last match decides
		if c.Purpose != purpose {
			continue
		}
		granted = c.Status == domain.ConsentGranted
	}
	return granted, nil
}

// WithdrawConsent revokes a previously granted consent for the purpose.
// Fails with ErrNotFound when the subject holds no granted record for it.
func (m *Manager) WithdrawConsent(ctx context.Context, userID, purpose string, now time.Time) error {
	list, err := m.Store.Consents().ListConsentsByUser(ctx, userID)
	if err != nil {
		return err
	}

	for i := len(list) - 1; i >= 0; i-- {
		c := list[i]
		if c.Purpose != purpose || c.Status != domain.ConsentGranted {
			continue
		}

		c.Status = domain.ConsentWithdrawn
		withdrawn := now
		c.WithdrawnAt = &withdrawn
		if err := m.Store.Consents().UpdateConsent(ctx, c); err != nil {
			return err
		}

		m.Security.DataAccess(userID, "consent", "withdraw")
		return nil
	}

	return ErrNotFound
}

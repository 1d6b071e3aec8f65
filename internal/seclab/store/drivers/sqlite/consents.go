package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/domain"
	"github.com/secbyexample/seclab/internal/seclab/store"
)

type consentsRepo struct {
	db *sql.DB
}

func (r *consentsRepo) CreateConsent(ctx context.Context, c domain.Consent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO consents (id, user_id, purpose, status, requested_at, decided_at, withdrawn_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Purpose, c.Status, c.RequestedAt,
		timePtrToNull(c.DecidedAt), timePtrToNull(c.WithdrawnAt),
	)
	return mapConstraint(err)
}

func (r *consentsRepo) GetConsent(ctx context.Context, id string) (domain.Consent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, purpose, status, requested_at, decided_at, withdrawn_at
		FROM consents WHERE id = ?`,
		id,
	)
	return scanConsent(row)
}

func (r *consentsRepo) UpdateConsent(ctx context.Context, c domain.Consent) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE consents
		SET status = ?, decided_at = ?, withdrawn_at = ?
		WHERE id = ?`,
		c.Status, timePtrToNull(c.DecidedAt), timePtrToNull(c.WithdrawnAt), c.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *consentsRepo) ListConsentsByUser(ctx context.Context, userID string) ([]domain.Consent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, purpose, status, requested_at, decided_at, withdrawn_at
		FROM consents WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Consent
	for rows.Next() {
		var c domain.Consent
		var decided, withdrawn sql.NullTime
		if err := rows.Scan(&c.ID, &c.UserID, &c.Purpose, &c.Status, &c.RequestedAt, &decided, &withdrawn); err != nil {
			return nil, err
		}
		c.DecidedAt = nullToTimePtr(decided)
		c.WithdrawnAt = nullToTimePtr(withdrawn)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *consentsRepo) DeleteConsentsByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM consents WHERE user_id = ?`, userID)
	return err
}

func scanConsent(row *sql.Row) (domain.Consent, error) {
	var c domain.Consent
	var decided, withdrawn sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.Purpose, &c.Status, &c.RequestedAt, &decided, &withdrawn)
	if err != nil {
		return domain.Consent{}, mapNotFound(err)
	}
	c.DecidedAt = nullToTimePtr(decided)
	c.WithdrawnAt = nullToTimePtr(withdrawn)
	return c, nil
}

func timePtrToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullToTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

package sqlite

import (
	"context"
	"database/sql"
)

type refreshTokensRepo struct {
	db *sql.DB
}

func (r *refreshTokensRepo) SetRefreshToken(ctx context.Context, userID int64, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			token_hash = excluded.token_hash,
			updated_at = CURRENT_TIMESTAMP`,
		userID, tokenHash,
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `
		SELECT token_hash FROM refresh_tokens WHERE user_id = ?`,
		userID,
	).Scan(&hash)
	if err != nil {
		return "", mapNotFound(err)
	}
	return hash, nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens WHERE user_id = ?`,
		userID,
	)
	return err
}

package sqlite

import (
	"context"
	"database/sql"

	"github.com/secbyexample/seclab/internal/seclab/domain"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) CreateUser(ctx context.Context, username, passwordVerifier, role string) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, password_verifier, role)
		VALUES (?, ?, ?)`,
		username, passwordVerifier, role,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}

	return r.GetUserByID(ctx, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_verifier, role, created_at
		FROM users WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_verifier, role, created_at
		FROM users WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordVerifier, &u.Role, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

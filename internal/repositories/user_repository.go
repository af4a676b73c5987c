package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"genpay/internal/models"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
                id, instance_id, username, password_hash, COALESCE(full_name, ''),
                COALESCE(email, ''), is_active, is_admin, last_login, created_at
`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.InstanceID, &u.Username, &u.PasswordHash, &u.FullName,
		&u.Email, &u.IsActive, &u.IsAdmin, &u.LastLogin, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetActiveByUsername(ctx context.Context, instanceID int, username string) (*models.User, error) {
	const q = `
                SELECT` + userColumns + `
                FROM users
                WHERE instance_id=$1 AND username=$2 AND is_active=TRUE
        `
	u, err := scanUser(r.db.QueryRowContext(ctx, q, instanceID, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) (int, error) {
	const q = `
                INSERT INTO users (instance_id, username, password_hash, full_name, email, is_admin)
                VALUES ($1, $2, $3, $4, $5, $6)
                RETURNING id
        `
	var id int
	if err := r.db.QueryRowContext(ctx, q,
		u.InstanceID, u.Username, u.PasswordHash, u.FullName, u.Email, u.IsAdmin,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) List(ctx context.Context, instanceID int) ([]*models.User, error) {
	const q = `
                SELECT` + userColumns + `
                FROM users
                WHERE instance_id=$1
                ORDER BY username
        `
	rows, err := r.db.QueryContext(ctx, q, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM users`
	var n int
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int) error {
	const q = `UPDATE users SET last_login = NOW() WHERE id=$1`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID int, hash string) error {
	const q = `UPDATE users SET password_hash=$1, updated_at = NOW() WHERE id=$2`
	if _, err := r.db.ExecContext(ctx, q, hash, userID); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	const q = `UPDATE users SET refresh_token=$1, refresh_expires_at=$2 WHERE id=$3`
	if _, err := r.db.ExecContext(ctx, q, token, expiresAt, userID); err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByRefresh(ctx context.Context, token string) (*models.User, error) {
	const q = `
                SELECT` + userColumns + `
                FROM users
                WHERE refresh_token=$1 AND refresh_expires_at > NOW() AND is_active=TRUE
        `
	u, err := scanUser(r.db.QueryRowContext(ctx, q, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by refresh token: %w", err)
	}
	return u, nil
}

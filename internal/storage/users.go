package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

const userColumns = `id, email, name, created_at, updated_at`

func scanUser(s scanner, extra ...any) (core.User, error) {
	var (
		u                core.User
		created, updated int64
	)
	dest := append([]any{&u.ID, &u.Email, &u.Name, &created, &updated}, extra...)
	if err := s.Scan(dest...); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = fromUnix(created)
	u.UpdatedAt = fromUnix(updated)
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User, passwordHash string) error {
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, passwordHash, toUnix(u.CreatedAt), toUnix(now))
	if isUniqueViolation(err) {
		return core.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteRepository) FindUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	var hash string
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE email = ?`, email), &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", core.ErrNotFound
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("find user by email: %w", err)
	}
	return u, hash, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]core.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateUserName(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name, toUnix(r.now()), id)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteUser removes the user row and every owned record atomically.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"expenses", "income", "categories", "budgets"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ?`, id); err != nil {
				return fmt.Errorf("delete %s of user %s: %w", table, id, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete user %s: %w", id, err)
		}
		return nil
	})
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const categoryColumns = `id, user_id, name, icon, kind, created_at, updated_at`

func scanCategory(s scanner) (core.Category, error) {
	var (
		c                core.Category
		kind             string
		created, updated int64
	)
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &kind, &created, &updated); err != nil {
		return core.Category{}, err
	}
	c.Kind = core.Kind(kind)
	c.CreatedAt = fromUnix(created)
	c.UpdatedAt = fromUnix(updated)
	return c, nil
}

// CreateCategories inserts all rows in one transaction; either every
// category is stored or none is.
func (r *SQLiteRepository) CreateCategories(ctx context.Context, cats []core.Category) ([]string, error) {
	ids := make([]string, len(cats))
	now := toUnix(r.now())

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare category insert: %w", err)
		}
		defer stmt.Close()

		for i, c := range cats {
			ids[i] = uuid.NewString()
			if _, err := stmt.ExecContext(ctx, ids[i], c.UserID, c.Name, c.Icon, string(c.Kind), now, now); err != nil {
				return fmt.Errorf("insert category %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string, kind *core.Kind) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ?`
	args := []any{userID}
	if kind != nil {
		query += ` AND kind = ?`
		args = append(args, string(*kind))
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		c, err := scanCategory(tx.QueryRowContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load category %s: %w", id, err)
		}

		patch.Apply(&c, r.now())

		_, err = tx.ExecContext(ctx,
			`UPDATE categories SET name = ?, icon = ?, kind = ?, updated_at = ? WHERE id = ?`,
			c.Name, c.Icon, string(c.Kind), toUnix(c.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("update category %s: %w", id, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

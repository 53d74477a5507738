package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const budgetColumns = `id, user_id, amount, spent, month, year, created_at, updated_at`

func scanBudget(s scanner) (core.Budget, error) {
	var (
		b                core.Budget
		created, updated int64
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.Amount, &b.Spent, &b.Month, &b.Year, &created, &updated); err != nil {
		return core.Budget{}, err
	}
	b.CreatedAt = fromUnix(created)
	b.UpdatedAt = fromUnix(updated)
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (string, error) {
	id := uuid.NewString()
	now := toUnix(r.now())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, b.UserID, b.Amount.String(), b.Spent.String(), b.Month, b.Year, now, now)
	if isUniqueViolation(err) {
		return "", core.ErrBudgetExists
	}
	if err != nil {
		return "", fmt.Errorf("insert budget: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", id, err)
	}
	return b, nil
}

func (r *SQLiteRepository) FindBudget(ctx context.Context, userID string, w core.Window) (*core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? AND month = ? AND year = ? LIMIT 1`,
		userID, w.Month, w.Year))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find budget %s: %w", w, err)
	}
	return &b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, id string, patch core.BudgetPatch) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		b, err := scanBudget(tx.QueryRowContext(ctx,
			`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load budget %s: %w", id, err)
		}

		patch.Apply(&b, r.now())

		_, err = tx.ExecContext(ctx,
			`UPDATE budgets SET amount = ?, spent = ?, updated_at = ? WHERE id = ?`,
			b.Amount.String(), b.Spent.String(), toUnix(b.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("update budget %s: %w", id, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return nil
}

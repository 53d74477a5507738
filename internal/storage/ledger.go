package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const ledgerColumns = `id, user_id, amount, category, note, date, created_at, updated_at`

func ledgerTable(k core.Kind) (string, error) {
	if !k.Valid() {
		return "", core.ErrInvalidKind
	}
	return store.CollectionFor(k), nil
}

func scanTransaction(s scanner, kind core.Kind) (core.Transaction, error) {
	var (
		t                      core.Transaction
		date, created, updated int64
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Note, &date, &created, &updated); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = kind
	t.Date = fromUnix(date)
	t.CreatedAt = fromUnix(created)
	t.UpdatedAt = fromUnix(updated)
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	table, err := ledgerTable(t.Kind)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := toUnix(r.now())

	_, err = r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table, ledgerColumns),
		id, t.UserID, t.Amount.String(), t.Category, t.Note, toUnix(t.Date), now, now)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", table, err)
	}

	r.logger.DebugContext(ctx, "Ledger record saved to SQLite",
		"collection", table,
		"id", id,
		"user_id", t.UserID,
		"amount", t.Amount.String())
	return id, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, ledgerColumns, table), id)
	t, err := scanTransaction(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s %s: %w", table, id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, kind core.Kind, userID string, w *core.Window) ([]core.Transaction, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = ?`, ledgerColumns, table)
	args := []any{userID}
	if w != nil {
		start, end := w.Range()
		query += ` AND date >= ? AND date < ?`
		args = append(args, toUnix(start), toUnix(end))
	}
	query += ` ORDER BY date DESC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, kind core.Kind, id string, patch core.TransactionPatch) error {
	table, err := ledgerTable(kind)
	if err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, ledgerColumns, table), id)
		t, err := scanTransaction(row, kind)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load %s %s: %w", table, id, err)
		}

		patch.Apply(&t, r.now())

		_, err = tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET amount = ?, category = ?, note = ?, date = ?, updated_at = ? WHERE id = ?`, table),
			t.Amount.String(), t.Category, t.Note, toUnix(t.Date), toUnix(t.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("update %s %s: %w", table, id, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	table, err := ledgerTable(kind)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}

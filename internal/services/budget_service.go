package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// BudgetService manages the per-window spending caps.
type BudgetService struct {
	budgets store.BudgetStore
	ledger  store.TransactionStore
	log     *log.StructuredLogger
}

func NewBudgetService(budgets store.BudgetStore, ledger store.TransactionStore, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.Default(log.ComponentBudget)
	}
	return &BudgetService{budgets: budgets, ledger: ledger, log: log.NewStructuredLogger(logger)}
}

// CurrentBudget returns the caller's budget for w, or nil when none exists.
func (s *BudgetService) CurrentBudget(ctx context.Context, sess core.Session, w core.Window) (*core.Budget, error) {
	if !sess.Valid() {
		return nil, core.ErrUnauthenticated
	}
	b, err := s.budgets.FindBudget(ctx, sess.UserID, w)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpRead, store.CollectionBudgets, sess.UserID, err)
		return nil, fmt.Errorf("find budget %s: %w", w, err)
	}
	return b, nil
}

// Get returns the budget with id if it belongs to the caller.
func (s *BudgetService) Get(ctx context.Context, sess core.Session, id string) (core.Budget, error) {
	if !sess.Valid() {
		return core.Budget{}, core.ErrUnauthenticated
	}
	b, err := s.budgets.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	if b.UserID != sess.UserID {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

// Create stores a new budget with zero spent. A second budget for the same
// window is rejected with core.ErrBudgetExists.
func (s *BudgetService) Create(ctx context.Context, sess core.Session, in core.BudgetInput) (string, error) {
	if !sess.Valid() {
		return "", core.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	w := core.Window{Month: in.Month, Year: in.Year}
	existing, err := s.budgets.FindBudget(ctx, sess.UserID, w)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpCreate, store.CollectionBudgets, sess.UserID, err)
		return "", fmt.Errorf("check existing budget: %w", err)
	}
	if existing != nil {
		return "", core.ErrBudgetExists
	}

	id, err := s.budgets.CreateBudget(ctx, core.Budget{
		UserID: sess.UserID,
		Amount: in.Amount,
		Spent:  decimal.Zero,
		Month:  in.Month,
		Year:   in.Year,
	})
	if errors.Is(err, core.ErrBudgetExists) {
		return "", err
	}
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpCreate, store.CollectionBudgets, sess.UserID, err)
		return "", fmt.Errorf("create budget: %w", err)
	}
	return id, nil
}

// SetCap creates the budget for w or changes the cap of the existing one.
func (s *BudgetService) SetCap(ctx context.Context, sess core.Session, w core.Window, amount decimal.Decimal) (*core.Budget, error) {
	existing, err := s.CurrentBudget(ctx, sess, w)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		_, err := s.Create(ctx, sess, core.BudgetInput{Amount: amount, Month: w.Month, Year: w.Year})
		switch {
		case err == nil:
			// Pick up expenses logged before the budget existed.
			return s.RecomputeSpent(ctx, sess.UserID, w)
		case errors.Is(err, core.ErrBudgetExists):
			// Lost a race with a concurrent create; fall through to update.
			if existing, err = s.CurrentBudget(ctx, sess, w); err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, core.ErrBudgetExists
			}
		default:
			return nil, err
		}
	}

	if err := s.Update(ctx, existing.ID, core.BudgetPatch{Amount: &amount}); err != nil {
		return nil, err
	}
	b, err := s.budgets.GetBudget(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("reload budget: %w", err)
	}
	return &b, nil
}

// Update applies a partial change. Concurrent writers are not coordinated;
// the last one wins.
func (s *BudgetService) Update(ctx context.Context, id string, patch core.BudgetPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := s.budgets.UpdateBudget(ctx, id, patch); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		s.log.LogStoreFailure(ctx, log.OpUpdate, store.CollectionBudgets, "", err)
		return fmt.Errorf("update budget %s: %w", id, err)
	}
	return nil
}

func (s *BudgetService) UpdateSpent(ctx context.Context, id string, amount decimal.Decimal) error {
	return s.Update(ctx, id, core.BudgetPatch{Spent: &amount})
}

// Delete removes the budget. Deleting an unknown id is not an error.
func (s *BudgetService) Delete(ctx context.Context, id string) error {
	if err := s.budgets.DeleteBudget(ctx, id); err != nil && !errors.Is(err, core.ErrNotFound) {
		s.log.LogStoreFailure(ctx, log.OpDelete, store.CollectionBudgets, "", err)
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return nil
}

// RecomputeSpent sets the window's budget spent to the sum of the user's
// expenses in that window. It returns nil when the window has no budget.
func (s *BudgetService) RecomputeSpent(ctx context.Context, userID string, w core.Window) (*core.Budget, error) {
	b, err := s.budgets.FindBudget(ctx, userID, w)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpRead, store.CollectionBudgets, userID, err)
		return nil, fmt.Errorf("find budget %s: %w", w, err)
	}
	if b == nil {
		return nil, nil
	}

	expenses, err := s.ledger.ListTransactions(ctx, core.KindExpense, userID, &w)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpList, store.CollectionExpenses, userID, err)
		return nil, fmt.Errorf("list expenses %s: %w", w, err)
	}

	spent := core.Sum(expenses)
	if spent.Equal(b.Spent) {
		return b, nil
	}
	if err := s.UpdateSpent(ctx, b.ID, spent); err != nil {
		return nil, err
	}
	s.log.LogSpentRecomputed(ctx, b.ID, userID, w.Month, w.Year, spent.StringFixed(2))

	updated, err := s.budgets.GetBudget(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("reload budget: %w", err)
	}
	return &updated, nil
}

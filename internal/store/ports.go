// Package store declares the persistence ports the services depend on.
// Adapters: store/memory (tests, local runs) and storage (SQLite).
package store

import (
	"context"

	"fintrack/internal/core"
)

// Collection names, shared by adapters, logs and ledger events.
const (
	CollectionExpenses   = "expenses"
	CollectionIncome     = "income"
	CollectionCategories = "categories"
	CollectionBudgets    = "budgets"
	CollectionUsers      = "users"
)

// CollectionFor maps a ledger kind to its collection.
func CollectionFor(k core.Kind) string {
	if k == core.KindIncome {
		return CollectionIncome
	}
	return CollectionExpenses
}

type (
	// TransactionStore persists expense and income records. Deletes are
	// idempotent; updates of a missing id return core.ErrNotFound.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (id string, err error)
		GetTransaction(ctx context.Context, kind core.Kind, id string) (core.Transaction, error)
		// ListTransactions returns the user's records ordered by date
		// descending. A nil window lists everything.
		ListTransactions(ctx context.Context, kind core.Kind, userID string, w *core.Window) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, kind core.Kind, id string, patch core.TransactionPatch) error
		DeleteTransaction(ctx context.Context, kind core.Kind, id string) error
	}

	CategoryStore interface {
		CreateCategories(ctx context.Context, cats []core.Category) (ids []string, err error)
		GetCategory(ctx context.Context, id string) (core.Category, error)
		ListCategories(ctx context.Context, userID string, kind *core.Kind) ([]core.Category, error)
		UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) error
		DeleteCategory(ctx context.Context, id string) error
	}

	// BudgetStore holds at most one budget per (user, month, year);
	// CreateBudget reports core.ErrBudgetExists on conflict.
	BudgetStore interface {
		CreateBudget(ctx context.Context, b core.Budget) (id string, err error)
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		// FindBudget returns nil when the window has no budget.
		FindBudget(ctx context.Context, userID string, w core.Window) (*core.Budget, error)
		UpdateBudget(ctx context.Context, id string, patch core.BudgetPatch) error
		DeleteBudget(ctx context.Context, id string) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User, passwordHash string) error
		GetUser(ctx context.Context, id string) (core.User, error)
		FindUserByEmail(ctx context.Context, email string) (core.User, string, error)
		ListUsers(ctx context.Context) ([]core.User, error)
		UpdateUserName(ctx context.Context, id, name string) error
		// DeleteUser removes the user together with every record they own.
		DeleteUser(ctx context.Context, id string) error
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		TransactionStore
		CategoryStore
		BudgetStore
		UserStore
		Close() error
	}
)

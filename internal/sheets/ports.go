// Package sheets exports monthly report summaries to spreadsheets.
package sheets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Summary is one exported row: a user's totals for a window.
type Summary struct {
	Window     core.Window
	UserID     string
	Email      string
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Balance    decimal.Decimal
	Count      int
	ExportedAt time.Time
}

// Key identifies the row a summary occupies; re-exports overwrite it.
func (s Summary) Key() string {
	return s.Window.String() + "/" + s.UserID
}

func SummaryOf(u core.User, r core.Report, at time.Time) Summary {
	return Summary{
		Window:     r.Window,
		UserID:     u.ID,
		Email:      u.Email,
		Income:     r.TotalIncome,
		Expense:    r.TotalExpense,
		Balance:    r.Balance,
		Count:      len(r.RecentTransactions),
		ExportedAt: at.UTC(),
	}
}

// Same reports whether two summaries carry identical figures.
func (s Summary) Same(o Summary) bool {
	return s.Key() == o.Key() &&
		s.Income.Equal(o.Income) &&
		s.Expense.Equal(o.Expense) &&
		s.Balance.Equal(o.Balance) &&
		s.Count == o.Count
}

// ReportExporter writes summaries to an outbound sheet, replacing any
// earlier row for the same window and user.
type ReportExporter interface {
	ExportSummary(ctx context.Context, s Summary) error
	// ReadSummaries returns the rows already exported for year.
	ReadSummaries(ctx context.Context, year int) ([]Summary, error)
}

package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ReportEntry is one row of the unified transaction feed.
type ReportEntry struct {
	Kind     Kind
	ID       string
	UserID   string
	Amount   decimal.Decimal
	Category string
	Note     string
	Date     string // RFC3339Nano, UTC
}

// Report is a derived, non-persisted summary of a window's ledger.
type Report struct {
	Window             Window
	TotalIncome        decimal.Decimal
	TotalExpense       decimal.Decimal
	Balance            decimal.Decimal
	RecentTransactions []ReportEntry
}

// BuildReport merges expenses and incomes into a Report. Entries are sorted by
// date descending; ties keep merge order (expenses before incomes).
func BuildReport(w Window, expenses, incomes []Transaction) Report {
	totalExpense := Sum(expenses)
	totalIncome := Sum(incomes)

	type keyed struct {
		at    time.Time
		entry ReportEntry
	}
	merged := make([]keyed, 0, len(expenses)+len(incomes))
	for _, group := range []struct {
		kind Kind
		list []Transaction
	}{{KindExpense, expenses}, {KindIncome, incomes}} {
		for _, t := range group.list {
			at := t.Date.UTC()
			merged = append(merged, keyed{at: at, entry: ReportEntry{
				Kind:     group.kind,
				ID:       t.ID,
				UserID:   t.UserID,
				Amount:   t.Amount,
				Category: t.Category,
				Note:     t.Note,
				Date:     at.Format(time.RFC3339Nano),
			}})
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].at.After(merged[j].at)
	})

	entries := make([]ReportEntry, len(merged))
	for i, m := range merged {
		entries[i] = m.entry
	}

	return Report{
		Window:             w,
		TotalIncome:        totalIncome,
		TotalExpense:       totalExpense,
		Balance:            totalIncome.Sub(totalExpense),
		RecentTransactions: entries,
	}
}

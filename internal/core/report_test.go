package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(Window{Month: 6, Year: 2024}, nil, nil)
	if !r.TotalIncome.IsZero() || !r.TotalExpense.IsZero() || !r.Balance.IsZero() {
		t.Fatalf("expected zero totals, got %+v", r)
	}
	if r.RecentTransactions == nil || len(r.RecentTransactions) != 0 {
		t.Fatalf("expected empty non-nil feed, got %#v", r.RecentTransactions)
	}
}

func TestBuildReportScenario(t *testing.T) {
	expenses := []Transaction{{ID: "e1", Amount: decimal.RequireFromString("12.50"), Category: "Food", Date: day(2024, 6, 1)}}
	incomes := []Transaction{{ID: "i1", Amount: decimal.NewFromInt(500), Category: "Salary", Date: day(2024, 6, 1)}}

	r := BuildReport(Window{Month: 6, Year: 2024}, expenses, incomes)

	if r.TotalIncome.String() != "500" || r.TotalExpense.String() != "12.5" || r.Balance.String() != "487.5" {
		t.Fatalf("unexpected totals: income=%s expense=%s balance=%s", r.TotalIncome, r.TotalExpense, r.Balance)
	}
	if len(r.RecentTransactions) != 2 {
		t.Fatalf("expected both records, got %d", len(r.RecentTransactions))
	}
	// equal dates keep merge order
	if r.RecentTransactions[0].Kind != KindExpense || r.RecentTransactions[1].Kind != KindIncome {
		t.Fatalf("unexpected tie order: %+v", r.RecentTransactions)
	}
	if r.RecentTransactions[0].Date != "2024-06-01T00:00:00Z" {
		t.Fatalf("unexpected date form %q", r.RecentTransactions[0].Date)
	}
}

func TestBuildReportSortedDescending(t *testing.T) {
	expenses := []Transaction{
		{ID: "e1", Amount: decimal.NewFromInt(1), Date: day(2024, 6, 3)},
		{ID: "e2", Amount: decimal.NewFromInt(2), Date: day(2024, 6, 20)},
		{ID: "e3", Amount: decimal.NewFromInt(3), Date: day(2024, 6, 11)},
	}
	incomes := []Transaction{
		{ID: "i1", Amount: decimal.NewFromInt(10), Date: day(2024, 6, 15)},
		{ID: "i2", Amount: decimal.NewFromInt(20), Date: day(2024, 6, 1)},
	}

	r := BuildReport(Window{Month: 6, Year: 2024}, expenses, incomes)

	want := []string{"e2", "i1", "e3", "e1", "i2"}
	for i, id := range want {
		if r.RecentTransactions[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, r.RecentTransactions[i].ID)
		}
	}
	for i := 1; i < len(r.RecentTransactions); i++ {
		if r.RecentTransactions[i-1].Date < r.RecentTransactions[i].Date {
			t.Fatalf("feed not sorted at %d", i)
		}
	}
	if r.TotalExpense.String() != "6" || r.TotalIncome.String() != "30" || r.Balance.String() != "24" {
		t.Fatalf("unexpected totals %+v", r)
	}
}

func TestBuildReportDecimalExactness(t *testing.T) {
	var expenses []Transaction
	for i := 0; i < 10; i++ {
		expenses = append(expenses, Transaction{Amount: decimal.RequireFromString("0.1"), Date: day(2024, 1, 1)})
	}
	r := BuildReport(Window{Month: 1, Year: 2024}, expenses, nil)
	if !r.TotalExpense.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected exact 1, got %s", r.TotalExpense)
	}
	if r.Balance.String() != "-1" {
		t.Fatalf("expected -1 balance, got %s", r.Balance)
	}
}

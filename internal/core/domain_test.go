package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"expense", KindExpense, true},
		{" Income ", KindIncome, true},
		{"", "", false},
		{"transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Amount:   decimal.RequireFromString("12.50"),
		Category: "Food",
		Date:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	bads := []TransactionInput{
		{Amount: decimal.NewFromInt(-1), Category: "Food", Date: good.Date},
		{Amount: decimal.NewFromInt(1), Category: "  ", Date: good.Date},
		{Amount: decimal.NewFromInt(1), Category: "Food"},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionPatchApply(t *testing.T) {
	now := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	tx := Transaction{Amount: decimal.NewFromInt(5), Category: "Food", Note: "a"}
	amount := decimal.NewFromInt(7)
	note := "b"
	TransactionPatch{Amount: &amount, Note: &note}.Apply(&tx, now)

	if !tx.Amount.Equal(amount) || tx.Note != "b" || tx.Category != "Food" {
		t.Fatalf("unexpected patched record: %+v", tx)
	}
	if !tx.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt to be stamped")
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Food", Kind: KindExpense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "", Kind: KindExpense}).Validate(); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Category{Name: "Food", Kind: "other"}).Validate(); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestDefaultCategories(t *testing.T) {
	exp := DefaultCategories(KindExpense)
	inc := DefaultCategories(KindIncome)
	if len(exp) != 8 || len(inc) != 5 {
		t.Fatalf("unexpected seed sizes: %d expense, %d income", len(exp), len(inc))
	}
	for _, s := range exp {
		if s.Kind != KindExpense {
			t.Fatalf("expense seed with kind %q", s.Kind)
		}
	}
	exp[0].Name = "mutated"
	if DefaultCategories(KindExpense)[0].Name == "mutated" {
		t.Fatalf("DefaultCategories must return a copy")
	}
	if DefaultCategories("bogus") != nil {
		t.Fatalf("unknown kind should have no seeds")
	}
}

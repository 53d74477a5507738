package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Budget is the spending cap for one user and window.
	Budget struct {
		ID        string
		UserID    string
		Amount    decimal.Decimal
		Spent     decimal.Decimal
		Month     int
		Year      int
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	BudgetInput struct {
		Amount decimal.Decimal
		Month  int
		Year   int
	}

	// BudgetPatch carries the mutable fields; nil means untouched.
	BudgetPatch struct {
		Amount *decimal.Decimal
		Spent  *decimal.Decimal
	}

	// Progress is the presentation-facing spend state of a budget.
	Progress struct {
		Ratio     float64
		Percent   int
		Over      bool
		Remaining decimal.Decimal
	}
)

// Window returns the budget's (month, year) key.
func (b Budget) Window() Window {
	return Window{Month: b.Month, Year: b.Year}
}

func (in BudgetInput) Validate() error {
	if err := validateAmount(in.Amount); err != nil {
		return err
	}
	if !(Window{Month: in.Month, Year: in.Year}).Valid() {
		return ErrInvalidWindow
	}
	return nil
}

func (p BudgetPatch) Validate() error {
	if p.Amount != nil {
		if err := validateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Spent != nil {
		if err := validateAmount(*p.Spent); err != nil {
			return err
		}
	}
	return nil
}

func (p BudgetPatch) Apply(b *Budget, now time.Time) {
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Spent != nil {
		b.Spent = *p.Spent
	}
	b.UpdatedAt = now
}

// ProgressOf computes spend against cap. The ratio is clamped to [0,1]; a zero
// cap yields ratio 0 rather than a non-finite value.
func ProgressOf(b Budget) Progress {
	p := Progress{
		Over:      b.Spent.GreaterThan(b.Amount),
		Remaining: b.Amount.Sub(b.Spent),
	}
	if !b.Amount.IsPositive() {
		return p
	}
	ratio, _ := b.Spent.Div(b.Amount).Float64()
	switch {
	case ratio > 1:
		ratio = 1
	case ratio < 0:
		ratio = 0
	}
	p.Ratio = ratio
	p.Percent = int(ratio*100 + 0.5)
	return p
}

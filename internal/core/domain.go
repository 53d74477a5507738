package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

type (
	// Kind tags a ledger record or category as expense or income.
	Kind string

	Transaction struct {
		ID        string
		UserID    string
		Kind      Kind
		Amount    decimal.Decimal
		Category  string
		Note      string
		Date      time.Time
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// TransactionInput is the caller-supplied payload for a new ledger record.
	TransactionInput struct {
		Amount   decimal.Decimal
		Category string
		Note     string
		Date     time.Time
	}

	// TransactionPatch carries the fields to change; nil means untouched.
	TransactionPatch struct {
		Amount   *decimal.Decimal
		Category *string
		Note     *string
		Date     *time.Time
	}

	Category struct {
		ID        string
		UserID    string
		Name      string
		Icon      string
		Kind      Kind
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	CategoryPatch struct {
		Name *string
		Icon *string
		Kind *Kind
	}

	User struct {
		ID        string
		Email     string
		Name      string
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidKind        = errors.New("invalid kind")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidWindow      = errors.New("invalid window")
	ErrNotFound           = errors.New("not found")
	ErrBudgetExists       = errors.New("budget already exists for window")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("no authenticated session")
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindIncome:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts "expense" or "income" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

func validateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if err := validateAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(in.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

func (p TransactionPatch) Validate() error {
	if p.Amount != nil {
		if err := validateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Apply merges the patch into t and stamps UpdatedAt.
func (p TransactionPatch) Apply(t *Transaction, now time.Time) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	t.UpdatedAt = now
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (p CategoryPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	if p.Kind != nil && !p.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (p CategoryPatch) Apply(c *Category, now time.Time) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Kind != nil {
		c.Kind = *p.Kind
	}
	c.UpdatedAt = now
}

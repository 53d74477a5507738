package core

// CategorySeed is a default category template without owner or id.
type CategorySeed struct {
	Name string
	Icon string
	Kind Kind
}

var (
	defaultExpenseCategories = []CategorySeed{
		{Name: "Food & Drinks", Icon: "restaurant", Kind: KindExpense},
		{Name: "Shopping", Icon: "shopping-bag", Kind: KindExpense},
		{Name: "Transport", Icon: "directions-car", Kind: KindExpense},
		{Name: "Bills", Icon: "receipt", Kind: KindExpense},
		{Name: "Entertainment", Icon: "movie", Kind: KindExpense},
		{Name: "Health", Icon: "healing", Kind: KindExpense},
		{Name: "Education", Icon: "school", Kind: KindExpense},
		{Name: "Other", Icon: "more-horiz", Kind: KindExpense},
	}

	defaultIncomeCategories = []CategorySeed{
		{Name: "Salary", Icon: "work", Kind: KindIncome},
		{Name: "Business", Icon: "business", Kind: KindIncome},
		{Name: "Investment", Icon: "trending-up", Kind: KindIncome},
		{Name: "Gift", Icon: "card-giftcard", Kind: KindIncome},
		{Name: "Other", Icon: "more-horiz", Kind: KindIncome},
	}
)

// DefaultCategories returns a copy of the seed set for the kind.
func DefaultCategories(k Kind) []CategorySeed {
	switch k {
	case KindExpense:
		return append([]CategorySeed(nil), defaultExpenseCategories...)
	case KindIncome:
		return append([]CategorySeed(nil), defaultIncomeCategories...)
	default:
		return nil
	}
}

package models

// Fixed category vocabularies. These are configuration constants, not a
// persisted entity: a transaction document only carries the category keys
// that actually received an amount.
var (
	IncomeCategories = []string{
		"Salary",
		"Investments",
		"Others",
	}

	ExpenseCategories = []string{
		"EMI",
		"Rent",
		"Maintenance",
		"Credit Card Bill",
		"Utilities",
		"Bill",
		"SIP",
		"Others",
	}
)

// IsIncomeCategory checks if a category belongs to the income vocabulary
func IsIncomeCategory(category string) bool {
	return containsCategory(IncomeCategories, category)
}

// IsExpenseCategory checks if a category belongs to the expense vocabulary
func IsExpenseCategory(category string) bool {
	return containsCategory(ExpenseCategories, category)
}

func containsCategory(categories []string, category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

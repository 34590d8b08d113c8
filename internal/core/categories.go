package core

// Reserved categories used by the ledger when it appends correlated
// transactions. They double as ordinary free-text categories.
const (
	CategoryDebts           = "Долги"
	CategoryDepositInterest = "Проценты по вкладам"
	CategoryDeposits        = "Вклады"
	CategoryOther           = "Другое"
)

// DefaultIncomeCategories is the taxonomy offered to clients for income
// transactions. Categories are free text; this list is a suggestion,
// not a constraint.
func DefaultIncomeCategories() []string {
	return []string{
		"Зарплата",
		"Фриланс",
		"Инвестиции",
		"Подарки",
		CategoryDepositInterest,
		CategoryOther,
	}
}

// DefaultExpenseCategories is the taxonomy offered for expenses.
func DefaultExpenseCategories() []string {
	return []string{
		"Жилье",
		"Питание",
		"Транспорт",
		"Развлечения",
		"Здоровье",
		"Образование",
		"Одежда",
		"Путешествия",
		CategoryOther,
	}
}

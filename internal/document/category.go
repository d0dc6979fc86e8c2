package document

// ExpenseCategory classifies an Expense document
type ExpenseCategory string

const (
	FoodAndDining     ExpenseCategory = "FOOD_AND_DINING"
	Transportation    ExpenseCategory = "TRANSPORTATION"
	Shopping          ExpenseCategory = "SHOPPING"
	Entertainment     ExpenseCategory = "ENTERTAINMENT"
	BillsAndUtilities ExpenseCategory = "BILLS_AND_UTILITIES"
	Healthcare        ExpenseCategory = "HEALTHCARE"
	Travel            ExpenseCategory = "TRAVEL"
	Education         ExpenseCategory = "EDUCATION"
	OtherExpense      ExpenseCategory = "OTHERS"
)

// IncomeCategory classifies an Income document
type IncomeCategory string

const (
	Salary       IncomeCategory = "SALARY"
	Business     IncomeCategory = "BUSINESS"
	Investments  IncomeCategory = "INVESTMENTS"
	Gifts        IncomeCategory = "GIFTS"
	Freelance    IncomeCategory = "FREELANCE"
	RentalIncome IncomeCategory = "RENTAL_INCOME"
	Interest     IncomeCategory = "INTEREST"
	OtherIncome  IncomeCategory = "OTHERS"
)

// ExpenseCategories lists every expense category in prompt order
var ExpenseCategories = []ExpenseCategory{
	FoodAndDining, Transportation, Shopping, Entertainment, BillsAndUtilities,
	Healthcare, Travel, Education, OtherExpense,
}

// IncomeCategories lists every income category in prompt order
var IncomeCategories = []IncomeCategory{
	Salary, Business, Investments, Gifts, Freelance, RentalIncome, Interest, OtherIncome,
}

var expenseDisplayNames = map[ExpenseCategory]string{
	FoodAndDining:     "Food & Dining",
	Transportation:    "Transportation",
	Shopping:          "Shopping",
	Entertainment:     "Entertainment",
	BillsAndUtilities: "Bills & Utilities",
	Healthcare:        "Healthcare",
	Travel:            "Travel",
	Education:         "Education",
	OtherExpense:      "Others",
}

var incomeDisplayNames = map[IncomeCategory]string{
	Salary:       "Salary",
	Business:     "Business",
	Investments:  "Investments",
	Gifts:        "Gifts",
	Freelance:    "Freelance",
	RentalIncome: "Rental Income",
	Interest:     "Interest",
	OtherIncome:  "Others",
}

// DisplayName returns the human readable label, or the raw value if unknown
func (c ExpenseCategory) DisplayName() string {
	if name, ok := expenseDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// DisplayName returns the human readable label, or the raw value if unknown
func (c IncomeCategory) DisplayName() string {
	if name, ok := incomeDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// CategoryDisplayName labels whichever category is set, or "" when neither is.
func (d FinancialDocument) CategoryDisplayName() string {
	switch {
	case d.ExpenseCategory != nil:
		return d.ExpenseCategory.DisplayName()
	case d.IncomeCategory != nil:
		return d.IncomeCategory.DisplayName()
	}
	return ""
}

// ExpenseCategoryNames returns the enum values as strings
func ExpenseCategoryNames() []string {
	names := make([]string, 0, len(ExpenseCategories))
	for _, c := range ExpenseCategories {
		names = append(names, string(c))
	}
	return names
}

// IncomeCategoryNames returns the enum values as strings
func IncomeCategoryNames() []string {
	names := make([]string, 0, len(IncomeCategories))
	for _, c := range IncomeCategories {
		names = append(names, string(c))
	}
	return names
}

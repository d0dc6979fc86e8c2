package document

import "fmt"

// Validate enforces the category invariant on a candidate. It returns a copy of
// the candidate as a FinancialDocument, sharing no slices or pointers with it,
// or an error of kind ErrCategoryMissing, ErrCategoryConflict or
// ErrUnknownTransactionType.
func Validate(c CandidateDocument) (FinancialDocument, error) {
	switch c.Type {
	case Expense:
		if c.ExpenseCategory == nil {
			return FinancialDocument{}, NewError(ErrCategoryMissing, "expenseCategory must be set for Expense transactions", nil)
		}
		if c.IncomeCategory != nil {
			return FinancialDocument{}, NewError(ErrCategoryConflict, "incomeCategory must not be set for Expense transactions", nil)
		}
	case Income:
		if c.IncomeCategory == nil {
			return FinancialDocument{}, NewError(ErrCategoryMissing, "incomeCategory must be set for Income transactions", nil)
		}
		if c.ExpenseCategory != nil {
			return FinancialDocument{}, NewError(ErrCategoryConflict, "expenseCategory must not be set for Income transactions", nil)
		}
	default:
		return FinancialDocument{}, NewError(ErrUnknownTransactionType, fmt.Sprintf("%q is neither %s nor %s", c.Type, Expense, Income), nil)
	}

	return FinancialDocument(c.clone()), nil
}

// clone deep-copies the line items and category values
func (c CandidateDocument) clone() CandidateDocument {
	out := c
	if c.LineItems != nil {
		out.LineItems = make([]LineItem, len(c.LineItems))
		copy(out.LineItems, c.LineItems)
	}
	if c.ExpenseCategory != nil {
		v := *c.ExpenseCategory
		out.ExpenseCategory = &v
	}
	if c.IncomeCategory != nil {
		v := *c.IncomeCategory
		out.IncomeCategory = &v
	}
	return out
}

package document

import (
	"math"
	"strconv"
	"strings"
)

// CreateEntryResponse is the flattened, string-valued view of a FinancialDocument
// handed to the entry store.
type CreateEntryResponse struct {
	UserID          string  `json:"userId"`
	Name            string  `json:"name"`
	Amount          string  `json:"amount"`
	Type            string  `json:"type"`
	ExpenseCategory *string `json:"expenseCategory"`
	IncomeCategory  *string `json:"incomeCategory"`
	Currency        string  `json:"currency"`
	Description     string  `json:"description"`
}

// EntryResponse projects the document: the amount becomes a decimal string and
// categories become their enum names. Whole amounts keep one fractional digit
// ("96.0") so downstream parsers always see a decimal.
func (d FinancialDocument) EntryResponse() CreateEntryResponse {
	resp := CreateEntryResponse{
		UserID:      d.UserID,
		Name:        d.Name,
		Amount:      formatAmount(d.Amount),
		Type:        string(d.Type),
		Currency:    d.Currency,
		Description: d.Description,
	}
	if d.ExpenseCategory != nil {
		s := string(*d.ExpenseCategory)
		resp.ExpenseCategory = &s
	}
	if d.IncomeCategory != nil {
		s := string(*d.IncomeCategory)
		resp.IncomeCategory = &s
	}
	return resp
}

func formatAmount(a float64) string {
	s := strconv.FormatFloat(a, 'f', -1, 64)
	if math.IsInf(a, 0) || math.IsNaN(a) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

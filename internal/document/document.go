package document

// TransactionType is the primary kind of a financial document
type TransactionType string

const (
	Expense TransactionType = "Expense"
	Income  TransactionType = "Income"
)

// DocumentInput is the text produced by OCR for a single upload
type DocumentInput struct {
	UserID  string `json:"userId"`
	RawText string `json:"rawText"`
}

// LineItem is a single purchased item on a receipt
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	TotalPrice  float64 `json:"totalPrice"`
}

// CandidateDocument is the oracle's unvalidated guess at the document fields
type CandidateDocument struct {
	UserID          string           `json:"userId"`
	Name            string           `json:"name"`
	Amount          float64          `json:"amount"`
	Type            TransactionType  `json:"type"`
	ExpenseCategory *ExpenseCategory `json:"expenseCategory"`
	IncomeCategory  *IncomeCategory  `json:"incomeCategory"`
	Currency        string           `json:"currency"`
	Description     string           `json:"description"`
	LineItems       []LineItem       `json:"lineItems,omitempty"`
}

// FinancialDocument is a candidate that passed Validate. Exactly one of
// ExpenseCategory and IncomeCategory is set, chosen by Type.
type FinancialDocument struct {
	UserID          string           `json:"userId"`
	Name            string           `json:"name"`
	Amount          float64          `json:"amount"`
	Type            TransactionType  `json:"type"`
	ExpenseCategory *ExpenseCategory `json:"expenseCategory"`
	IncomeCategory  *IncomeCategory  `json:"incomeCategory"`
	Currency        string           `json:"currency"`
	Description     string           `json:"description"`
	LineItems       []LineItem       `json:"lineItems,omitempty"`
}

// ProcessedFinancialDocument is the pipeline output: the validated document and
// its totals in both anchor currencies.
type ProcessedFinancialDocument struct {
	OriginalData     FinancialDocument `json:"originalData"`
	TotalAmountINR   float64           `json:"totalAmountInr"`
	TotalAmountUSD   float64           `json:"totalAmountUsd"`
	ExchangeRateDate string            `json:"exchangeRateDate"`
	RatesDegraded    bool              `json:"ratesDegraded"`
}

package entry

import (
	"time"

	"github.com/zombor/bill-tracker/internal/document"
)

// Entry is a processed upload as stored and served: the flattened document,
// its anchor-currency totals and the original file.
type Entry struct {
	ID string `json:"id"`
	document.CreateEntryResponse
	CategoryDisplayName string              `json:"categoryDisplayName,omitempty"`
	LineItems           []document.LineItem `json:"lineItems,omitempty"`
	TotalAmountINR      float64             `json:"totalAmountInr"`
	TotalAmountUSD      float64             `json:"totalAmountUsd"`
	ExchangeRateDate    string              `json:"exchangeRateDate"`
	RatesDegraded       bool                `json:"ratesDegraded"`
	Filename            string              `json:"filename"`
	ContentType         string              `json:"contentType"`
	CreatedAt           time.Time           `json:"createdAt"`
}

// newEntry builds an Entry from a pipeline result
func newEntry(id string, processed document.ProcessedFinancialDocument, filename, contentType string, now time.Time) *Entry {
	return &Entry{
		ID:                  id,
		CreateEntryResponse: processed.OriginalData.EntryResponse(),
		CategoryDisplayName: processed.OriginalData.CategoryDisplayName(),
		LineItems:           processed.OriginalData.LineItems,
		TotalAmountINR:      processed.TotalAmountINR,
		TotalAmountUSD:      processed.TotalAmountUSD,
		ExchangeRateDate:    processed.ExchangeRateDate,
		RatesDegraded:       processed.RatesDegraded,
		Filename:            filename,
		ContentType:         contentType,
		CreatedAt:           now,
	}
}

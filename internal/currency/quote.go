package currency

import "time"

const dateLayout = "2006-01-02"

// Quote is a set of rates relative to one base currency, valid on Date.
type Quote struct {
	Rates    map[string]float64 `json:"rates"`
	Date     string             `json:"date"`
	Degraded bool               `json:"-"`
}

// DegradedQuote is the stand-in used when rates cannot be fetched: no rates,
// dated on the given day.
func DegradedQuote(now time.Time) Quote {
	return Quote{
		Rates:    map[string]float64{},
		Date:     now.Format(dateLayout),
		Degraded: true,
	}
}

// Rate returns the rate for code, or 0 when the quote has none.
func (q Quote) Rate(code string) float64 {
	return q.Rates[code]
}

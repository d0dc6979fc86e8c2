package currency

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/zombor/bill-tracker/internal/document"
)

const (
	USD = "USD"
	INR = "INR"
)

// TimeSource returns the current time
type TimeSource func() time.Time

// Normalizer converts a document's amount into INR and USD totals.
type Normalizer struct {
	rates RateSource
	now   TimeSource
	log   zerolog.Logger
}

// NewNormalizer creates a Normalizer using rates for conversion.
func NewNormalizer(rates RateSource, logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		rates: rates,
		now:   time.Now,
		log:   logger.With().Str("component", "currency").Logger(),
	}
}

// SetTimeSource sets the clock used to date degraded quotes
func (n *Normalizer) SetTimeSource(ts TimeSource) {
	n.now = ts
}

// BaseCode resolves a document currency to the code used for rate lookup.
func BaseCode(currency string) string {
	c := strings.TrimSpace(currency)
	if c == "₹" {
		return INR
	}
	return strings.ToUpper(c)
}

// targets lists the anchor currencies that need a rate from base.
func targets(base string) []string {
	switch base {
	case USD:
		return []string{INR}
	case INR:
		return []string{USD}
	default:
		return []string{USD, INR}
	}
}

// Normalize never fails: when rates are unavailable the totals come from a
// degraded quote and RatesDegraded is set.
func (n *Normalizer) Normalize(doc document.FinancialDocument) document.ProcessedFinancialDocument {
	base := BaseCode(doc.Currency)

	quote, err := n.rates.Latest(base, targets(base))
	if err != nil {
		n.log.Warn().Err(err).Str("base", base).Msg("exchange rates unavailable, using degraded quote")
		quote = DegradedQuote(n.now())
	}

	var inr, usd float64
	switch base {
	case USD:
		usd = doc.Amount
		inr = doc.Amount * quote.Rate(INR)
	case INR:
		inr = doc.Amount
		usd = doc.Amount * quote.Rate(USD)
	default:
		usd = doc.Amount * quote.Rate(USD)
		inr = doc.Amount * quote.Rate(INR)
	}

	return document.ProcessedFinancialDocument{
		OriginalData:     doc,
		TotalAmountINR:   Round2(inr),
		TotalAmountUSD:   Round2(usd),
		ExchangeRateDate: quote.Date,
		RatesDegraded:    quote.Degraded,
	}
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

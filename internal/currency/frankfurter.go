package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RateSource fetches the latest rates from base to each target code.
type RateSource interface {
	Latest(base string, targets []string) (Quote, error)
}

// Frankfurter is a RateSource backed by the Frankfurter exchange rate API.
type Frankfurter struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewFrankfurter creates a Frankfurter client. An empty baseURL uses the public API.
func NewFrankfurter(baseURL string, timeout time.Duration) *Frankfurter {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.app"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Frankfurter{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Latest performs GET /latest?from=base&to=targets.
func (f *Frankfurter) Latest(base string, targets []string) (Quote, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("from", base)
	q.Set("to", strings.Join(targets, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to create rates request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Quote{}, fmt.Errorf("rates request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return Quote{}, fmt.Errorf("failed to decode rates: %w", err)
	}
	if quote.Rates == nil {
		return Quote{}, fmt.Errorf("rates response has no rates")
	}
	return quote, nil
}

package quote

import (
	"context"
	"net/url"
	"time"

	"pricestick/internal/application/port"
)

// DefaultFMPURL is the stable single-quote endpoint of Financial Modeling Prep.
const DefaultFMPURL = "https://financialmodelingprep.com/stable/quote"

// FMP fetches one equity quote.
type FMP struct {
	httpSource
}

// NewFMP builds the source for symbol.
func NewFMP(baseURL, apiKey, symbol string, timeout time.Duration) *FMP {
	if baseURL == "" {
		baseURL = DefaultFMPURL
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", apiKey)
	return &FMP{httpSource: newHTTPSource("Stock API", withQuery(baseURL, q), timeout)}
}

func (f *FMP) Name() string { return "fmp" }

func (f *FMP) Fetch(ctx context.Context) ([]byte, error) {
	return f.get(ctx)
}

var _ port.QuoteSource = (*FMP)(nil)

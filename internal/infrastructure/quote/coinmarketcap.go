package quote

import (
	"context"
	"net/url"
	"strings"
	"time"

	"pricestick/internal/application/port"
)

// DefaultCoinMarketCapURL is the quotes/latest endpoint of the v2 API.
const DefaultCoinMarketCapURL = "https://pro-api.coinmarketcap.com/v2/cryptocurrency/quotes/latest"

// CoinMarketCap fetches the crypto batch in one request.
type CoinMarketCap struct {
	httpSource
}

// NewCoinMarketCap builds the source for symbols converted to convert.
func NewCoinMarketCap(baseURL, apiKey string, symbols []string, convert string, timeout time.Duration) *CoinMarketCap {
	if baseURL == "" {
		baseURL = DefaultCoinMarketCapURL
	}
	q := url.Values{}
	q.Set("CMC_PRO_API_KEY", apiKey)
	q.Set("symbol", strings.Join(symbols, ","))
	q.Set("convert", convert)
	return &CoinMarketCap{httpSource: newHTTPSource("API", withQuery(baseURL, q), timeout)}
}

func (c *CoinMarketCap) Name() string { return "coinmarketcap" }

func (c *CoinMarketCap) Fetch(ctx context.Context) ([]byte, error) {
	return c.get(ctx)
}

func withQuery(base string, q url.Values) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

var _ port.QuoteSource = (*CoinMarketCap)(nil)

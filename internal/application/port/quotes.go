package port

import (
	"context"

	"pricestick/internal/domain"
)

// QuoteSource fetches the raw response body of one upstream quote API.
// Errors are classified with the domain fetch errors.
type QuoteSource interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Link is the network association the fetch cycle depends on.
type Link interface {
	Connected(ctx context.Context) bool
	Reconnect(ctx context.Context) error
}

// Decoder turns a raw response into one quote per requested symbol. It either
// returns every symbol or fails.
type Decoder func(raw []byte, symbols []string) (map[string]domain.Quote, error)

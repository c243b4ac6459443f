package quote

import (
	"fmt"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"
)

// NoTimestamp is shown when the equity API omits the quote time.
const NoTimestamp = "Just now"

// BatchDecoder adapts DecodeBatch for the convert currency.
func BatchDecoder(convert string) port.Decoder {
	return func(raw []byte, symbols []string) (map[string]domain.Quote, error) {
		return DecodeBatch(raw, symbols, convert)
	}
}

// SingleDecoder adapts DecodeSingle to the one symbol of the equity group.
func SingleDecoder() port.Decoder {
	return func(raw []byte, symbols []string) (map[string]domain.Quote, error) {
		if len(symbols) != 1 {
			return nil, fmt.Errorf("single quote decoder needs one symbol, got %d", len(symbols))
		}
		sq, err := DecodeSingle(raw)
		if err != nil {
			return nil, err
		}
		ts := sq.Timestamp
		if !sq.HasTimestamp {
			ts = NoTimestamp
		}
		return map[string]domain.Quote{symbols[0]: {Price: sq.Price, Timestamp: ts}}, nil
	}
}

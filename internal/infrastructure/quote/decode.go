package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"pricestick/internal/domain"
)

// TimestampLayout is the ISO-8601 form shared by both upstream APIs.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// SingleQuote is a decoded equity quote. HasTimestamp is false when the
// response carried no timestamp; the caller picks a fallback text.
type SingleQuote struct {
	Price        float64
	Timestamp    string
	HasTimestamp bool
}

type cmcPrice struct {
	Price       json.RawMessage `json:"price"`
	LastUpdated *string         `json:"last_updated"`
}

type cmcEntry struct {
	Quote map[string]cmcPrice `json:"quote"`
}

// DecodeBatch decodes a CoinMarketCap quotes/latest response. Every symbol in
// symbols must be present with a numeric price in the convert currency,
// otherwise no quote is returned.
func DecodeBatch(raw []byte, symbols []string, convert string) (map[string]domain.Quote, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: batch response is not valid JSON", domain.ErrMalformedPayload)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: API response missing 'data' section", domain.ErrMissingField)
	}
	rawData, ok := top["data"]
	if !ok || isNull(rawData) {
		return nil, fmt.Errorf("%w: API response missing 'data' section", domain.ErrMissingField)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(rawData, &data); err != nil {
		return nil, fmt.Errorf("%w: 'data' is not an object", domain.ErrMissingField)
	}

	out := make(map[string]domain.Quote, len(symbols))
	for _, sym := range symbols {
		rawEntry, ok := data[sym]
		if !ok {
			return nil, fmt.Errorf("%w: Missing data for %s", domain.ErrMissingField, sym)
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(rawEntry, &entries); err != nil || len(entries) == 0 {
			return nil, fmt.Errorf("%w: Invalid data structure for %s", domain.ErrMissingField, sym)
		}
		var entry cmcEntry
		if err := json.Unmarshal(entries[0], &entry); err != nil {
			return nil, fmt.Errorf("%w: Invalid data structure for %s", domain.ErrMissingField, sym)
		}
		p, ok := entry.Quote[convert]
		if !ok {
			return nil, fmt.Errorf("%w: Missing price data for %s", domain.ErrMissingField, sym)
		}
		price, ok := numeric(p.Price)
		if !ok {
			return nil, fmt.Errorf("%w: Missing price data for %s", domain.ErrMissingField, sym)
		}
		q := domain.Quote{Price: price}
		if p.LastUpdated != nil {
			q.Timestamp = *p.LastUpdated
		}
		out[sym] = q
	}
	return out, nil
}

// DecodeSingle decodes a Financial Modeling Prep quote response, a one-element
// array whose first object carries price and an optional unix timestamp.
func DecodeSingle(raw []byte) (SingleQuote, error) {
	if !json.Valid(raw) {
		return SingleQuote{}, fmt.Errorf("%w: stock response is not valid JSON", domain.ErrMalformedPayload)
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return SingleQuote{}, fmt.Errorf("%w: Invalid stock API response structure", domain.ErrMissingField)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(arr[0], &obj); err != nil {
		return SingleQuote{}, fmt.Errorf("%w: Invalid stock API response structure", domain.ErrMissingField)
	}
	price, ok := numeric(obj["price"])
	if !ok {
		return SingleQuote{}, fmt.Errorf("%w: Missing stock price data", domain.ErrMissingField)
	}

	q := SingleQuote{Price: price}
	rawTS, ok := obj["timestamp"]
	if !ok || isNull(rawTS) {
		return q, nil
	}
	var ts int64
	if err := json.Unmarshal(rawTS, &ts); err != nil {
		return SingleQuote{}, fmt.Errorf("%w: stock timestamp is not an integer", domain.ErrMissingField)
	}
	q.Timestamp = time.Unix(ts, 0).UTC().Format(TimestampLayout)
	q.HasTimestamp = true
	return q, nil
}

// numeric reports the value of raw when it is a JSON number.
func numeric(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

package domain

// Trend is the movement of the latest non-equal price.
type Trend int

const (
	TrendUnknown Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "unknown"
	}
}

// Quote is one decoded price with its display timestamp.
type Quote struct {
	Price     float64
	Timestamp string
}

// AssetRecord is the mutable state of one tracked instrument.
type AssetRecord struct {
	Symbol      string
	DisplayName string
	Currency    string
	Icon        string
	IsEquity    bool
	NameWidth   int

	Price          float64
	PreviousPrice  float64
	LastUpdated    string
	PriceIncreased bool
	IsFirstUpdate  bool
}

// NewAssetRecord builds the startup record for an instrument.
func NewAssetRecord(in Instrument, currency string, group Group, lastUpdated string) AssetRecord {
	return AssetRecord{
		Symbol:        in.Symbol,
		DisplayName:   in.Name,
		Currency:      currency,
		Icon:          in.Icon,
		IsEquity:      group == GroupEquity,
		NameWidth:     in.NameWidth,
		LastUpdated:   lastUpdated,
		IsFirstUpdate: true,
	}
}

// Group returns the fetch group of the record.
func (r *AssetRecord) Group() Group {
	if r.IsEquity {
		return GroupEquity
	}
	return GroupCrypto
}

// ApplyPrice records a successfully decoded price. A tick equal to the stored
// price keeps the previous direction.
func (r *AssetRecord) ApplyPrice(newPrice float64) {
	if !r.IsFirstUpdate && newPrice != r.Price {
		r.PreviousPrice = r.Price
		r.PriceIncreased = newPrice > r.Price
	}
	r.IsFirstUpdate = false
	r.Price = newPrice
}

// Apply records q as the latest quote.
func (r *AssetRecord) Apply(q Quote) {
	r.ApplyPrice(q.Price)
	r.LastUpdated = q.Timestamp
}

// Trend maps the movement flags to a Trend.
func (r *AssetRecord) Trend() Trend {
	switch {
	case r.IsFirstUpdate:
		return TrendUnknown
	case r.PriceIncreased:
		return TrendUp
	default:
		return TrendDown
	}
}

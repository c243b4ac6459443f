package storage

import "pricestick/internal/domain"

// AssetRow is the persisted last-good state of one asset.
type AssetRow struct {
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	PreviousPrice  float64 `json:"previous_price"`
	LastUpdated    string  `json:"last_updated"`
	PriceIncreased bool    `json:"price_increased"`
	Ts             int64   `json:"ts"`
}

// FromRecord keeps only the mutable fields; static fields come from config.
func FromRecord(rec domain.AssetRecord, ts int64) AssetRow {
	return AssetRow{
		Symbol:         rec.Symbol,
		Price:          rec.Price,
		PreviousPrice:  rec.PreviousPrice,
		LastUpdated:    rec.LastUpdated,
		PriceIncreased: rec.PriceIncreased,
		Ts:             ts,
	}
}

// Record converts the row back. A persisted row always had a price.
func (r AssetRow) Record() domain.AssetRecord {
	return domain.AssetRecord{
		Symbol:         r.Symbol,
		Price:          r.Price,
		PreviousPrice:  r.PreviousPrice,
		LastUpdated:    r.LastUpdated,
		PriceIncreased: r.PriceIncreased,
		IsFirstUpdate:  false,
	}
}

package port

import (
	"context"

	"pricestick/internal/domain"
)

// Repository keeps the last good value of every asset so that cached prices
// survive a restart. It stores one row per symbol, never a history.
type Repository interface {
	UpsertAsset(ctx context.Context, rec domain.AssetRecord, ts int64) error
	LoadAssets(ctx context.Context) ([]domain.AssetRecord, error)
	Close() error
}

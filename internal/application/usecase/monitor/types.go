package monitor

import (
	"context"

	"pricestick/internal/application/service"
	"pricestick/internal/domain"
)

// Screen texts.
const (
	StatusConnecting = "Connecting..."
	StatusConnected  = "Connected! Loading data..."
	StatusUpdating   = "Updating prices..."
	ErrInitialLoad   = "Failed to load initial data"
	ErrUpdate        = "Update failed"
)

// Fetcher runs one fetch cycle over every asset group.
type Fetcher interface {
	RunCycle(ctx context.Context) service.CycleResult
	Irrecoverable() bool
}

// Screen renders assets and full-screen messages.
type Screen interface {
	Render(rec domain.AssetRecord) error
	ShowStatus(text string) error
	ShowError(text string) error
	Invalidate()
}

// Publisher mirrors the table to the home automation broker.
type Publisher interface {
	PublishDiscovery(ctx context.Context, recs []domain.AssetRecord) error
	PublishStates(ctx context.Context, recs []domain.AssetRecord) error
}

// Store keeps the last good prices across restarts.
type Store interface {
	Save(ctx context.Context, recs []domain.AssetRecord, ts int64) error
	Restore(ctx context.Context, table *domain.AssetTable) int
}

package monitor

import (
	"context"

	"pricestick/internal/domain"
)

type noopStore struct{}

func (noopStore) Save(context.Context, []domain.AssetRecord, int64) error { return nil }
func (noopStore) Restore(context.Context, *domain.AssetTable) int         { return 0 }

type noopPublisher struct{}

func (noopPublisher) PublishDiscovery(context.Context, []domain.AssetRecord) error { return nil }
func (noopPublisher) PublishStates(context.Context, []domain.AssetRecord) error    { return nil }

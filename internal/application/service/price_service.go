package service

import (
	"context"
	"errors"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"

	"github.com/rs/zerolog/log"
)

// PriceService persists the last good value of every asset and restores it
// at boot.
type PriceService struct {
	repo port.Repository
}

func NewPriceService(repo port.Repository) *PriceService {
	return &PriceService{repo: repo}
}

// Save upserts every record that has received at least one price.
func (s *PriceService) Save(ctx context.Context, recs []domain.AssetRecord, ts int64) error {
	if s.repo == nil {
		return nil
	}
	var errs []error
	for _, r := range recs {
		if r.IsFirstUpdate {
			continue
		}
		if err := s.repo.UpsertAsset(ctx, r, ts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Restore loads persisted records into table and returns how many matched.
func (s *PriceService) Restore(ctx context.Context, table *domain.AssetTable) int {
	if s.repo == nil {
		return 0
	}
	recs, err := s.repo.LoadAssets(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("restore cached prices failed")
		return 0
	}
	n := table.Restore(recs)
	if n > 0 {
		log.Info().Int("assets", n).Msg("restored cached prices")
	}
	return n
}

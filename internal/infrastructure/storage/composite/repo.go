package composite

import (
	"context"
	"errors"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"
)

// Repo fans writes out to every backend and reads from the first backend
// that has data.
type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) UpsertAsset(ctx context.Context, rec domain.AssetRecord, ts int64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.UpsertAsset(ctx, rec, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) LoadAssets(ctx context.Context) ([]domain.AssetRecord, error) {
	var errs []error
	for _, repo := range r.repos {
		recs, err := repo.LoadAssets(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(recs) > 0 {
			return recs, nil
		}
	}
	return nil, errors.Join(errs...)
}

func (r *Repo) Close() error {
	var errs []error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ port.Repository = (*Repo)(nil)

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"
	"pricestick/internal/infrastructure/storage"

	"github.com/redis/go-redis/v9"
)

type Repo struct {
	rdb       *redis.Client
	ttl       time.Duration
	keyLatest string // prefix + ":latest"
}

func New(rdb *redis.Client, prefix string, ttl time.Duration) *Repo {
	return &Repo{
		rdb:       rdb,
		ttl:       ttl,
		keyLatest: prefix + ":latest",
	}
}

func (r *Repo) UpsertAsset(ctx context.Context, rec domain.AssetRecord, ts int64) error {
	b, err := json.Marshal(storage.FromRecord(rec, ts))
	if err != nil {
		return err
	}

	// Hash: field = "BTC" -> json
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, rec.Symbol, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Repo) LoadAssets(ctx context.Context) ([]domain.AssetRecord, error) {
	fields, err := r.rdb.HGetAll(ctx, r.keyLatest).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.AssetRecord, 0, len(fields))
	for sym, raw := range fields {
		var row storage.AssetRow
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("decode %s:%s: %w", r.keyLatest, sym, err)
		}
		out = append(out, row.Record())
	}
	return out, nil
}

// Close is a no-op; the client is owned by the container.
func (r *Repo) Close() error { return nil }

var _ port.Repository = (*Repo)(nil)

package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"
	"pricestick/internal/infrastructure/storage"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS assets (
  symbol TEXT PRIMARY KEY,
  price DOUBLE PRECISION NOT NULL,
  previous_price DOUBLE PRECISION NOT NULL,
  last_updated TEXT NOT NULL,
  price_increased BOOLEAN NOT NULL,
  ts_ms BIGINT NOT NULL
);
`)
	return err
}

func (r *Repo) UpsertAsset(ctx context.Context, rec domain.AssetRecord, ts int64) error {
	row := storage.FromRecord(rec, ts)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assets(symbol, price, previous_price, last_updated, price_increased, ts_ms)
		VALUES($1, $2, $3, $4, $5, $6)
		ON CONFLICT(symbol) DO UPDATE SET
		price=EXCLUDED.price, previous_price=EXCLUDED.previous_price,
		last_updated=EXCLUDED.last_updated, price_increased=EXCLUDED.price_increased, ts_ms=EXCLUDED.ts_ms
	`, row.Symbol, row.Price, row.PreviousPrice, row.LastUpdated, row.PriceIncreased, row.Ts)
	return err
}

func (r *Repo) LoadAssets(ctx context.Context) ([]domain.AssetRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT symbol, price, previous_price, last_updated, price_increased, ts_ms FROM assets ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AssetRecord
	for rows.Next() {
		var row storage.AssetRow
		if err := rows.Scan(&row.Symbol, &row.Price, &row.PreviousPrice, &row.LastUpdated, &row.PriceIncreased, &row.Ts); err != nil {
			return nil, err
		}
		out = append(out, row.Record())
	}
	return out, rows.Err()
}

var _ port.Repository = (*Repo)(nil)

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"pricestick/internal/domain"
)

func newRecord(sym string, prices ...float64) domain.AssetRecord {
	rec := domain.NewAssetRecord(domain.LookupInstrument(sym), "CAD", domain.GroupCrypto, "")
	for _, p := range prices {
		rec.Apply(domain.Quote{Price: p, Timestamp: "2026-10-14T15:00:00.000Z"})
	}
	return rec
}

func TestSQLiteRepoUpsertAndLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.UpsertAsset(ctx, newRecord("BTC", 100), 1); err != nil {
		t.Fatalf("UpsertAsset failed: %v", err)
	}
	if err := repo.UpsertAsset(ctx, newRecord("BTC", 100, 105), 2); err != nil {
		t.Fatalf("UpsertAsset failed: %v", err)
	}
	if err := repo.UpsertAsset(ctx, newRecord("ETH", 10), 2); err != nil {
		t.Fatalf("UpsertAsset failed: %v", err)
	}

	recs, err := repo.LoadAssets(ctx)
	if err != nil {
		t.Fatalf("LoadAssets failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected one row per symbol, got %d", len(recs))
	}
	btc := recs[0]
	if btc.Symbol != "BTC" || btc.Price != 105 || btc.PreviousPrice != 100 || !btc.PriceIncreased || btc.IsFirstUpdate {
		t.Errorf("unexpected BTC row: %+v", btc)
	}
}

func TestSQLiteRepoReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	_ = repo.UpsertAsset(ctx, newRecord("XRP", 0.61), 1)
	_ = repo.Close()

	repo, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	recs, _ := repo.LoadAssets(ctx)
	if len(recs) != 1 || recs[0].Price != 0.61 {
		t.Errorf("rows after reopen = %+v", recs)
	}
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/pricewatch/internal/core/domain"
	"github.com/vietddude/pricewatch/internal/infra/storage"
)

func product(store, name string, perLitre float64, inStock bool) domain.Product {
	return domain.Product{
		Store: store, Name: name,
		SizeML: 375, PackQty: 1,
		Price: perLitre * 0.375, PricePerLitre: perLitre,
		InStock: inStock,
	}
}

func TestAppendAndQueryRecent(t *testing.T) {
	repo := NewPriceRepo()
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	stored, err := repo.AppendMany(ctx, []domain.Product{
		product("coles", "Soda A", 2.40, true),
		product("woolworths", "Soda B", 1.80, true),
		product("amazon", "Soda C", 0, true), // unusable pricing, still storable
	}, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 3 {
		t.Errorf("stored = %d, want 3", stored)
	}

	byPrice, err := repo.QueryRecent(ctx, 10, storage.SortPricePerLitre)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byPrice) != 3 {
		t.Fatalf("records = %d, want 3", len(byPrice))
	}
	if byPrice[0].Product.Name != "Soda C" || byPrice[1].Product.Name != "Soda B" {
		t.Errorf("unexpected order: %q, %q", byPrice[0].Product.Name, byPrice[1].Product.Name)
	}

	limited, err := repo.QueryRecent(ctx, 2, storage.SortNewest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited records = %d, want 2", len(limited))
	}
}

func TestBestDealsFiltersUnusable(t *testing.T) {
	repo := NewPriceRepo()
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	repo.AppendMany(ctx, []domain.Product{
		product("coles", "Good", 2.00, true),
		product("coles", "Zero", 0, true),
		product("coles", "OutOfStock", 1.00, false),
		product("woolworths", "Better", 1.50, true),
	}, today)

	deals, err := repo.BestDeals(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deals) != 2 {
		t.Fatalf("deals = %d, want 2", len(deals))
	}
	if deals[0].Product.Name != "Better" || deals[1].Product.Name != "Good" {
		t.Errorf("unexpected order: %q, %q", deals[0].Product.Name, deals[1].Product.Name)
	}
}

func TestHistoryMatchesNameFragment(t *testing.T) {
	repo := NewPriceRepo()
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	repo.AppendMany(ctx, []domain.Product{
		product("coles", "Sunkist Zero Sugar Can", 2.40, true),
		product("coles", "Fanta Bottle", 1.90, true),
	}, today)

	hits, err := repo.History(ctx, "sunkist", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Product.Name != "Sunkist Zero Sugar Can" {
		t.Errorf("history = %+v, want only the Sunkist record", hits)
	}
}

func TestStoreStats(t *testing.T) {
	repo := NewPriceRepo()
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	repo.AppendMany(ctx, []domain.Product{
		product("coles", "A", 2.00, true),
		product("coles", "B", 4.00, true),
		product("woolworths", "C", 1.50, true),
	}, today)

	stats, err := repo.StoreStats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %d stores, want 2", len(stats))
	}
	coles := stats[0]
	if coles.Store != "coles" || coles.TotalProducts != 2 || coles.AvgPerLitre != 3.00 {
		t.Errorf("coles stats = %+v, want avg 3.00 over 2 products", coles)
	}
	if coles.MinPerLitre != 2.00 || coles.MaxPerLitre != 4.00 {
		t.Errorf("coles min/max = %v/%v, want 2.00/4.00", coles.MinPerLitre, coles.MaxPerLitre)
	}
}

func TestPruneOlderThan(t *testing.T) {
	repo := NewPriceRepo()
	ctx := context.Background()

	repo.AppendMany(ctx, []domain.Product{product("coles", "Old", 2.00, true)}, "2026-01-01")
	// Everything was just created, so a cutoff in the past removes nothing.
	removed, err := repo.PruneOlderThan(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}

	removed, err = repo.PruneOlderThan(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	left, _ := repo.QueryRecent(ctx, 10, storage.SortNewest)
	if len(left) != 0 {
		t.Errorf("records left = %d, want 0", len(left))
	}
}

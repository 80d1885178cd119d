// Package memory provides an in-memory price repository for tests and
// database-less runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/pricewatch/internal/core/domain"
	"github.com/vietddude/pricewatch/internal/infra/storage"
)

// PriceRepo implements storage.PriceRepository on a slice.
type PriceRepo struct {
	mu      sync.RWMutex
	nextID  int64
	records []storage.PriceRecord
}

// NewPriceRepo creates an empty in-memory price repository.
func NewPriceRepo() *PriceRepo {
	return &PriceRepo{nextID: 1}
}

func (r *PriceRepo) AppendMany(ctx context.Context, products []domain.Product, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.records = append(r.records, storage.PriceRecord{
			ID:        r.nextID,
			Date:      date,
			Product:   p,
			CreatedAt: time.Now(),
		})
		r.nextID++
	}
	return len(products), nil
}

func (r *PriceRepo) QueryRecent(ctx context.Context, limit int, sortBy storage.SortKey) ([]storage.PriceRecord, error) {
	r.mu.RLock()
	out := make([]storage.PriceRecord, len(r.records))
	copy(out, r.records)
	r.mu.RUnlock()

	if sortBy == storage.SortPricePerLitre {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Product.PricePerLitre < out[j].Product.PricePerLitre
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return clamp(out, limit), nil
}

func (r *PriceRepo) BestDeals(ctx context.Context, limit int) ([]storage.PriceRecord, error) {
	r.mu.RLock()
	var out []storage.PriceRecord
	for _, rec := range r.records {
		if rec.Product.InStock && rec.Product.PricePerLitre > 0 {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Product.PricePerLitre < out[j].Product.PricePerLitre
	})
	return clamp(out, limit), nil
}

func (r *PriceRepo) History(ctx context.Context, productName string, days int) ([]storage.PriceRecord, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	needle := strings.ToLower(productName)

	r.mu.RLock()
	var out []storage.PriceRecord
	for _, rec := range r.records {
		if rec.CreatedAt.Before(cutoff) {
			continue
		}
		if strings.Contains(strings.ToLower(rec.Product.Name), needle) {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PriceRepo) StoreStats(ctx context.Context) ([]storage.StoreStats, error) {
	today := time.Now().Format("2006-01-02")

	r.mu.RLock()
	defer r.mu.RUnlock()

	byStore := make(map[string]*storage.StoreStats)
	var order []string
	for _, rec := range r.records {
		if rec.Date != today {
			continue
		}
		s, ok := byStore[rec.Product.Store]
		if !ok {
			s = &storage.StoreStats{
				Store:       rec.Product.Store,
				MinPerLitre: rec.Product.PricePerLitre,
				MaxPerLitre: rec.Product.PricePerLitre,
			}
			byStore[rec.Product.Store] = s
			order = append(order, rec.Product.Store)
		}
		s.TotalProducts++
		s.AvgPerLitre += rec.Product.PricePerLitre
		if rec.Product.PricePerLitre < s.MinPerLitre {
			s.MinPerLitre = rec.Product.PricePerLitre
		}
		if rec.Product.PricePerLitre > s.MaxPerLitre {
			s.MaxPerLitre = rec.Product.PricePerLitre
		}
	}

	stats := make([]storage.StoreStats, 0, len(order))
	for _, store := range order {
		s := byStore[store]
		if s.TotalProducts > 0 {
			s.AvgPerLitre /= float64(s.TotalProducts)
		}
		stats = append(stats, *s)
	}
	return stats, nil
}

func (r *PriceRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	var removed int64
	for _, rec := range r.records {
		if rec.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return removed, nil
}

func clamp(records []storage.PriceRecord, limit int) []storage.PriceRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

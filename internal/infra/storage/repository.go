package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

// ErrNotFound is returned when a history query matches nothing.
var ErrNotFound = errors.New("no price records found")

// SortKey selects the ordering for recent-price queries.
type SortKey string

const (
	SortNewest        SortKey = "newest"
	SortPricePerLitre SortKey = "price_per_litre"
)

// PriceRecord is one stored price observation.
type PriceRecord struct {
	ID        int64
	Date      string // calendar date of the pipeline run, YYYY-MM-DD
	Product   domain.Product
	CreatedAt time.Time
}

// StoreStats aggregates today's observations for one store.
type StoreStats struct {
	Store         string
	TotalProducts int
	AvgPerLitre   float64
	MinPerLitre   float64
	MaxPerLitre   float64
}

// PriceRepository is the append-only history sink plus its simple read
// queries. AppendMany is best-effort: a record that fails to store is
// logged and skipped, never aborting the batch.
type PriceRepository interface {
	// AppendMany stores validated products under the given run date and
	// returns how many were actually stored.
	AppendMany(ctx context.Context, products []domain.Product, date string) (int, error)

	// QueryRecent returns up to limit records ordered by the sort key.
	QueryRecent(ctx context.Context, limit int, sortBy SortKey) ([]PriceRecord, error)

	// BestDeals returns in-stock records with usable pricing, cheapest
	// per litre first.
	BestDeals(ctx context.Context, limit int) ([]PriceRecord, error)

	// History returns observations whose product name contains the given
	// fragment, newest first, within the given number of days.
	History(ctx context.Context, productName string, days int) ([]PriceRecord, error)

	// StoreStats aggregates today's records per store.
	StoreStats(ctx context.Context) ([]StoreStats, error)

	// PruneOlderThan deletes records created before the cutoff and
	// returns how many were removed.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/pricewatch/internal/core/domain"
	"github.com/vietddude/pricewatch/internal/infra/storage"
)

// PriceRepo implements storage.PriceRepository using PostgreSQL.
type PriceRepo struct {
	db *DB
}

// NewPriceRepo creates a new PostgreSQL price repository.
func NewPriceRepo(db *DB) *PriceRepo {
	return &PriceRepo{db: db}
}

type priceRow struct {
	ID            int64     `db:"id"`
	Date          string    `db:"date"`
	Store         string    `db:"store"`
	ProductName   string    `db:"product_name"`
	SizeML        float64   `db:"size_ml"`
	PackQty       int       `db:"pack_qty"`
	Price         float64   `db:"price"`
	PricePerLitre float64   `db:"price_per_litre"`
	InStock       bool      `db:"in_stock"`
	URL           string    `db:"url"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *priceRow) toRecord() storage.PriceRecord {
	return storage.PriceRecord{
		ID:   r.ID,
		Date: r.Date,
		Product: domain.Product{
			Store:         r.Store,
			Name:          r.ProductName,
			SizeML:        r.SizeML,
			PackQty:       r.PackQty,
			Price:         r.Price,
			PricePerLitre: r.PricePerLitre,
			InStock:       r.InStock,
			URL:           r.URL,
		},
		CreatedAt: r.CreatedAt,
	}
}

const selectColumns = `id, date, store, product_name, size_ml, pack_qty, price, price_per_litre, in_stock, url, created_at`

// AppendMany stores products one by one; a row that fails to insert is
// logged and skipped so the rest of the batch still lands.
func (r *PriceRepo) AppendMany(ctx context.Context, products []domain.Product, date string) (int, error) {
	query := `
		INSERT INTO prices (date, store, product_name, size_ml, pack_qty, price, price_per_litre, in_stock, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	stored := 0
	for _, p := range products {
		_, err := r.db.ExecContext(ctx, query,
			date, p.Store, p.Name, p.SizeML, p.PackQty, p.Price, p.PricePerLitre, p.InStock, p.URL,
		)
		if err != nil {
			slog.Error("failed to store price record",
				"store", p.Store, "product", p.Name, "error", err)
			continue
		}
		stored++
	}

	slog.Info("appended price records", "stored", stored, "of", len(products), "date", date)
	return stored, nil
}

// QueryRecent returns the latest records ordered by the sort key.
func (r *PriceRepo) QueryRecent(ctx context.Context, limit int, sortBy storage.SortKey) ([]storage.PriceRecord, error) {
	order := `created_at DESC`
	if sortBy == storage.SortPricePerLitre {
		order = `price_per_litre ASC, created_at DESC`
	}
	query := fmt.Sprintf(`SELECT %s FROM prices ORDER BY %s LIMIT $1`, selectColumns, order)

	var rows []priceRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent prices: %w", err)
	}
	return toRecords(rows), nil
}

// BestDeals returns in-stock records with usable pricing, cheapest first.
func (r *PriceRepo) BestDeals(ctx context.Context, limit int) ([]storage.PriceRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM prices
		WHERE in_stock AND price_per_litre > 0
		ORDER BY price_per_litre ASC
		LIMIT $1
	`, selectColumns)

	var rows []priceRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query best deals: %w", err)
	}
	return toRecords(rows), nil
}

// History returns observations for products matching the name fragment.
func (r *PriceRepo) History(ctx context.Context, productName string, days int) ([]storage.PriceRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM prices
		WHERE product_name ILIKE $1
		AND created_at >= NOW() - ($2 || ' days')::interval
		ORDER BY date DESC, created_at DESC
	`, selectColumns)

	var rows []priceRow
	if err := r.db.SelectContext(ctx, &rows, query, "%"+productName+"%", days); err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	return toRecords(rows), nil
}

// StoreStats aggregates today's records per store.
func (r *PriceRepo) StoreStats(ctx context.Context) ([]storage.StoreStats, error) {
	query := `
		SELECT
			store,
			COUNT(*) AS total_products,
			AVG(price_per_litre) AS avg_per_litre,
			MIN(price_per_litre) AS min_per_litre,
			MAX(price_per_litre) AS max_per_litre
		FROM prices
		WHERE date = to_char(NOW(), 'YYYY-MM-DD')
		GROUP BY store
	`

	var rows []struct {
		Store         string  `db:"store"`
		TotalProducts int     `db:"total_products"`
		AvgPerLitre   float64 `db:"avg_per_litre"`
		MinPerLitre   float64 `db:"min_per_litre"`
		MaxPerLitre   float64 `db:"max_per_litre"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query store stats: %w", err)
	}

	stats := make([]storage.StoreStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, storage.StoreStats{
			Store:         row.Store,
			TotalProducts: row.TotalProducts,
			AvgPerLitre:   row.AvgPerLitre,
			MinPerLitre:   row.MinPerLitre,
			MaxPerLitre:   row.MaxPerLitre,
		})
	}
	return stats, nil
}

// PruneOlderThan deletes records created before the cutoff.
func (r *PriceRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prices WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune prices: %w", err)
	}
	return res.RowsAffected()
}

func toRecords(rows []priceRow) []storage.PriceRecord {
	records := make([]storage.PriceRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vietddude/pricewatch/internal/infra/storage"
	"github.com/vietddude/pricewatch/internal/infra/storage/postgres"
)

var (
	historyDays int
	dealsLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history [name-fragment]",
	Short: "Show stored price history for matching products",
	Args:  cobra.MaximumNArgs(1),
	Run:   runHistory,
}

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Show the cheapest stored prices per litre",
	Run:   runDeals,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-store price statistics for today",
	Run:   runStats,
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 30, "how many days back to search")
	dealsCmd.Flags().IntVar(&dealsLimit, "limit", 10, "maximum rows to show")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dealsCmd)
	rootCmd.AddCommand(statsCmd)
}

// openRepo connects to the configured PostgreSQL store. The read-side
// commands need persisted history, so memory mode is rejected.
func openRepo(ctx context.Context) (storage.PriceRepository, func()) {
	cfg := loadConfig()
	if cfg.Database.URL == "" {
		slog.Error("History commands require a database; set database.url in the config")
		os.Exit(1)
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	return postgres.NewPriceRepo(db), func() { _ = db.Close() }
}

func runHistory(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	repo, closeRepo := openRepo(ctx)
	defer closeRepo()

	fragment := ""
	if len(args) > 0 {
		fragment = args[0]
	}

	records, err := repo.History(ctx, fragment, historyDays)
	if err != nil {
		slog.Error("Failed to query history", "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No matching records.")
		return
	}
	renderRecords(records)
}

func runDeals(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	repo, closeRepo := openRepo(ctx)
	defer closeRepo()

	records, err := repo.BestDeals(ctx, dealsLimit)
	if err != nil {
		slog.Error("Failed to query best deals", "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No stored deals yet. Run `pricewatch run` first.")
		return
	}
	renderRecords(records)
}

func runStats(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	repo, closeRepo := openRepo(ctx)
	defer closeRepo()

	stats, err := repo.StoreStats(ctx)
	if err != nil {
		slog.Error("Failed to query store stats", "error", err)
		os.Exit(1)
	}
	if len(stats) == 0 {
		fmt.Println("No records stored today.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Store", "Products", "Min $/L", "Avg $/L", "Max $/L"})
	for _, s := range stats {
		t.AppendRow(table.Row{
			s.Store, s.TotalProducts,
			fmt.Sprintf("$%.2f", s.MinPerLitre),
			fmt.Sprintf("$%.2f", s.AvgPerLitre),
			fmt.Sprintf("$%.2f", s.MaxPerLitre),
		})
	}
	t.Render()
}

func renderRecords(records []storage.PriceRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Date", "Product", "Store", "Price", "$/L", "In Stock"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Date, r.Product.Name, r.Product.Store,
			fmt.Sprintf("$%.2f", r.Product.Price),
			fmt.Sprintf("$%.2f", r.Product.PricePerLitre),
			r.Product.InStock,
		})
	}
	t.Render()
}

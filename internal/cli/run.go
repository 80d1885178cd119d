package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vietddude/pricewatch/internal/control"
	"github.com/vietddude/pricewatch/internal/core/domain"
)

var jsonOutPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one price check and print the results",
	Run:   runOnce,
}

func init() {
	runCmd.Flags().StringVar(&jsonOutPath, "json", "", "also write the full result to a JSON file")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewTracker(cfg)
	if err != nil {
		slog.Error("Failed to initialize Tracker", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Tracker.RunTimeout*2)
	defer cancel()

	result, err := app.RunOnce(ctx)
	if err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}

	printResult(result)

	if jsonOutPath != "" {
		if err := writeJSON(jsonOutPath, result); err != nil {
			slog.Error("Failed to write JSON output", "path", jsonOutPath, "error", err)
			os.Exit(1)
		}
		fmt.Printf("\nFull result written to %s\n", jsonOutPath)
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()
	_ = app.Stop(shutdownCtx)
}

func printResult(result *domain.PipelineResult) {
	fmt.Printf("Run %s: %d records from %d sources, %d usable products\n\n",
		result.RunID, result.Summary.TotalRecords, len(result.Outcomes), result.Summary.TotalProducts)

	if len(result.Ranked) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Product", "Store", "Size", "Price", "$/L", "In Stock"})
		for i, p := range result.Ranked {
			t.AppendRow(table.Row{
				i + 1, p.Name, p.Store, p.SizeText,
				fmt.Sprintf("$%.2f", p.Price),
				fmt.Sprintf("$%.2f", p.PricePerLitre),
				p.InStock,
			})
		}
		t.Render()
	}

	if best := result.BestDeal; best != nil {
		fmt.Printf("\nBest deal: %s at %s for $%.2f ($%.2f/L)\n",
			best.Name, best.Store, best.Price, best.PricePerLitre)
	} else {
		fmt.Println("\nNo eligible deal found.")
	}

	for name, status := range result.Summary.Sources {
		if !status.OK {
			fmt.Printf("warning: source %s failed: %s\n", name, status.Error)
		}
	}
}

func writeJSON(path string, result *domain.PipelineResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

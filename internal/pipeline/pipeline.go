// Package pipeline runs one full price-intelligence cycle: concurrent
// source fan-out, normalization, ranking and best-deal selection. The
// result is a self-contained value owned by the caller; a run with every
// source failing still returns a well-formed empty result.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/pricewatch/internal/core/domain"
	"github.com/vietddude/pricewatch/internal/infra/source"
	"github.com/vietddude/pricewatch/internal/pipeline/metrics"
	"github.com/vietddude/pricewatch/internal/pricing/deal"
	"github.com/vietddude/pricewatch/internal/pricing/normalize"
)

// Pipeline is the single entry surface scheduling, CLI and API callers
// invoke. Construction is the only pipeline-fatal step; Run degrades to
// partial results for everything else.
type Pipeline struct {
	orch     *Orchestrator
	selector *deal.Selector
	log      *slog.Logger
}

// New builds a pipeline over the configured sources.
func New(sources []source.Adapter, timeout time.Duration) (*Pipeline, error) {
	orch, err := NewOrchestrator(sources, timeout)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		orch:     orch,
		selector: deal.NewSelector(),
		log:      slog.Default(),
	}, nil
}

// Run executes one full cycle and returns only after fan-out, normalize
// and select have all completed.
func (p *Pipeline) Run(ctx context.Context, queryTerms []string) *domain.PipelineResult {
	started := time.Now()
	result := &domain.PipelineResult{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	result.Outcomes = p.orch.Run(ctx, queryTerms)

	dropReasons := make(map[string]int)
	totalRecords := 0
	for _, outcome := range result.Outcomes {
		if !outcome.OK() {
			metrics.SourceFetches.WithLabelValues(outcome.Source, "failure").Inc()
			metrics.SourceRecords.WithLabelValues(outcome.Source).Set(0)
			continue
		}
		metrics.SourceFetches.WithLabelValues(outcome.Source, "success").Inc()
		metrics.SourceRecords.WithLabelValues(outcome.Source).Set(float64(len(outcome.Records)))
		totalRecords += len(outcome.Records)

		for _, raw := range outcome.Records {
			product, err := normalize.Normalize(raw, outcome.Source)
			if err != nil {
				reason := "malformed"
				if verr, ok := err.(*normalize.ValidationError); ok {
					reason = verr.Field + " " + verr.Reason
				}
				dropReasons[reason]++
				metrics.RecordsDropped.WithLabelValues(reason).Inc()
				continue
			}
			result.Products = append(result.Products, product)
		}
	}

	result.Ranked = p.selector.Rank(result.Products)
	result.BestDeal = p.selector.Select(result.Products)
	result.CompletedAt = time.Now()
	result.Summary = p.summarize(result, totalRecords, dropReasons)

	metrics.RunDuration.Observe(result.CompletedAt.Sub(started).Seconds())
	if result.BestDeal != nil {
		metrics.RunsTotal.WithLabelValues("recommended").Inc()
		metrics.BestDealPricePerLitre.Set(result.BestDeal.PricePerLitre)
		p.log.Info("pipeline run complete",
			"run_id", result.RunID,
			"products", len(result.Products),
			"best", result.BestDeal.Name,
			"price_per_litre", result.BestDeal.PricePerLitre)
	} else {
		metrics.RunsTotal.WithLabelValues("no_recommendation").Inc()
		p.log.Info("pipeline run complete without recommendation",
			"run_id", result.RunID, "products", len(result.Products))
	}

	return result
}

func (p *Pipeline) summarize(result *domain.PipelineResult, totalRecords int, dropReasons map[string]int) domain.Summary {
	summary := domain.Summary{
		TotalRecords:   totalRecords,
		TotalProducts:  len(result.Products),
		DropReasons:    dropReasons,
		Sources:        make(map[string]domain.SourceStatus, len(result.Outcomes)),
		Recommendation: result.BestDeal,
	}
	for _, n := range dropReasons {
		summary.Dropped += n
	}
	for name, outcome := range result.Outcomes {
		status := domain.SourceStatus{
			OK:       outcome.OK(),
			Records:  len(outcome.Records),
			Duration: outcome.Duration.Round(time.Millisecond).String(),
		}
		if outcome.Failure != nil {
			status.Error = outcome.Failure.Error()
		}
		summary.Sources[name] = status
	}
	for _, p := range result.Products {
		if p.InStock {
			summary.InStock++
		}
	}
	if len(result.Ranked) > 0 {
		pr := domain.PriceRange{Min: result.Ranked[0].PricePerLitre, Max: result.Ranked[0].PricePerLitre}
		total := 0.0
		for _, p := range result.Ranked {
			if p.PricePerLitre < pr.Min {
				pr.Min = p.PricePerLitre
			}
			if p.PricePerLitre > pr.Max {
				pr.Max = p.PricePerLitre
			}
			total += p.PricePerLitre
		}
		pr.Average = total / float64(len(result.Ranked))
		summary.PriceRange = &pr
	}
	summary.Savings = p.selector.Savings(result.BestDeal, result.Ranked)
	return summary
}

package domain

import "time"

// SourceStatus is the per-source line in the run summary.
type SourceStatus struct {
	OK       bool   `json:"ok"`
	Records  int    `json:"records"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// PriceRange summarizes the spread of usable per-litre prices.
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// Saving compares a ranked product against the recommendation.
type Saving struct {
	Product    Product `json:"product"`
	AmountPerL float64 `json:"amount_per_litre"`
	Percent    float64 `json:"percent"`
}

// Summary aggregates counts and spread for one pipeline run.
type Summary struct {
	TotalRecords   int                     `json:"total_records"`
	TotalProducts  int                     `json:"total_products"`
	InStock        int                     `json:"in_stock"`
	Dropped        int                     `json:"dropped"`
	DropReasons    map[string]int          `json:"drop_reasons,omitempty"`
	Sources        map[string]SourceStatus `json:"sources"`
	PriceRange     *PriceRange             `json:"price_range,omitempty"`
	Recommendation *Product                `json:"recommendation,omitempty"`
	Savings        []Saving                `json:"savings,omitempty"`
}

// PipelineResult is the root object returned by a single pipeline run.
// The caller owns it; the core keeps no reference after returning.
type PipelineResult struct {
	RunID       string                   `json:"run_id"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt time.Time                `json:"completed_at"`
	Outcomes    map[string]SourceOutcome `json:"outcomes"`
	Products    []Product                `json:"products"`
	Ranked      []Product                `json:"ranked"`
	BestDeal    *Product                 `json:"best_deal,omitempty"`
	Summary     Summary                  `json:"summary"`
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal tracks pipeline executions by final state.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"result"},
	)

	// RunDuration tracks end-to-end pipeline latency.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricewatch_run_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SourceFetches tracks per-source fetch outcomes.
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_source_fetches_total",
			Help: "Total source fetches by outcome",
		},
		[]string{"source", "result"},
	)

	// SourceRecords tracks raw records returned by each source last run.
	SourceRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pricewatch_source_records",
			Help: "Raw records returned by the source in the last run",
		},
		[]string{"source"},
	)

	// RecordsDropped tracks normalization drops by reason.
	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_records_dropped_total",
			Help: "Raw records dropped during normalization",
		},
		[]string{"reason"},
	)

	// BestDealPricePerLitre tracks the recommended per-litre price.
	BestDealPricePerLitre = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_best_deal_price_per_litre",
			Help: "Price per litre of the current recommendation",
		},
	)
)

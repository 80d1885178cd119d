package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/pricewatch/internal/core/domain"
	"github.com/vietddude/pricewatch/internal/infra/source"
)

// Orchestrator fans out to all configured sources in parallel and joins
// on all of them. One source's failure, panic or slowness never blocks
// collection of the others; a deadline turns laggards into timeout
// outcomes and leaves their goroutines to drain in the background.
type Orchestrator struct {
	sources []source.Adapter
	timeout time.Duration
	log     *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given adapters.
// A zero timeout means wait for every source however long it takes.
func NewOrchestrator(sources []source.Adapter, timeout time.Duration) (*Orchestrator, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if s.Name() == "" {
			return nil, fmt.Errorf("source with empty name")
		}
		if seen[s.Name()] {
			return nil, fmt.Errorf("duplicate source name %q", s.Name())
		}
		seen[s.Name()] = true
	}
	return &Orchestrator{sources: sources, timeout: timeout, log: slog.Default()}, nil
}

type indexedOutcome struct {
	index   int
	outcome domain.SourceOutcome
}

// Run queries every source with the same terms and returns one outcome
// per source, keyed by source name. It always returns all keys.
func (o *Orchestrator) Run(ctx context.Context, queryTerms []string) map[string]domain.SourceOutcome {
	results := make(chan indexedOutcome, len(o.sources))

	for i, adapter := range o.sources {
		go func(i int, adapter source.Adapter) {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					o.log.Error("source adapter panicked",
						"source", adapter.Name(), "panic", r)
					out := domain.Failed(adapter.Name(), domain.FailureParse,
						fmt.Sprintf("adapter panic: %v", r))
					out.Duration = time.Since(start)
					results <- indexedOutcome{i, out}
				}
			}()

			out := adapter.FetchCandidates(ctx, queryTerms)
			out.Source = adapter.Name() // the slot key wins over whatever the adapter set
			results <- indexedOutcome{i, out}
		}(i, adapter)
	}

	var deadline <-chan time.Time
	if o.timeout > 0 {
		timer := time.NewTimer(o.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	outcomes := make(map[string]domain.SourceOutcome, len(o.sources))
	pending := len(o.sources)

collect:
	for pending > 0 {
		select {
		case r := <-results:
			outcomes[r.outcome.Source] = r.outcome
			pending--
		case <-deadline:
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	// Sources still in flight missed the deadline; record them as failed
	// by timeout without waiting for them to unwind.
	for _, adapter := range o.sources {
		if _, ok := outcomes[adapter.Name()]; !ok {
			o.log.Warn("source missed the run deadline", "source", adapter.Name())
			outcomes[adapter.Name()] = domain.Failed(
				adapter.Name(), domain.FailureTimeout, "source did not complete before the run deadline")
		}
	}

	return outcomes
}

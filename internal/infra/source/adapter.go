// Package source defines the adapter boundary between the pipeline and
// the external retail sources. Adapters never let an internal failure
// escape: everything surfaces as a SourceOutcome so the orchestrator can
// treat all sources uniformly.
package source

import (
	"context"
	"strings"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

// Adapter is one external origin of product offer data.
type Adapter interface {
	// Name returns the stable source identifier (e.g. "coles").
	Name() string

	// FetchCandidates queries the source for the given terms and returns
	// raw records or a failure outcome. It must not panic past this
	// boundary and may take tens of seconds; honor ctx.
	FetchCandidates(ctx context.Context, queryTerms []string) domain.SourceOutcome
}

// Func adapts a plain function to the Adapter interface, mostly for
// tests and wiring.
type Func struct {
	ID    string
	Fetch func(ctx context.Context, queryTerms []string) domain.SourceOutcome
}

func (f Func) Name() string { return f.ID }

func (f Func) FetchCandidates(ctx context.Context, queryTerms []string) domain.SourceOutcome {
	return f.Fetch(ctx, queryTerms)
}

// ClassifyFetchError maps a fetch error onto the failure taxonomy.
// Challenge and throttle responses are transient (worth retrying next
// run); malformed payloads are parse failures.
func ClassifyFetchError(err error) domain.FailureKind {
	if err == nil {
		return domain.FailureTransient
	}
	s := strings.ToLower(err.Error())

	if strings.Contains(s, "unmarshal") || strings.Contains(s, "parse") ||
		strings.Contains(s, "unexpected shape") || strings.Contains(s, "invalid character") {
		return domain.FailureParse
	}
	if strings.Contains(s, "deadline exceeded") || strings.Contains(s, "context canceled") {
		return domain.FailureTimeout
	}
	return domain.FailureTransient
}

package domain

import "time"

// FailureKind classifies a source-level failure.
type FailureKind string

const (
	FailureTransient FailureKind = "transient" // network error, 5xx, throttling
	FailureParse     FailureKind = "parse"     // unexpected response shape
	FailureTimeout   FailureKind = "timeout"   // missed the pipeline deadline
)

// SourceFailure describes why a source produced no records this run.
type SourceFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *SourceFailure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

// SourceOutcome is the per-adapter result of one pipeline run: either a
// list of raw records or a failure, never both.
type SourceOutcome struct {
	Source    string         `json:"source"`
	Records   []RawRecord    `json:"records,omitempty"`
	Failure   *SourceFailure `json:"failure,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// OK reports whether the source completed without a failure.
func (o SourceOutcome) OK() bool {
	return o.Failure == nil
}

// Failed builds a failure outcome for a source.
func Failed(source string, kind FailureKind, msg string) SourceOutcome {
	return SourceOutcome{
		Source:    source,
		Failure:   &SourceFailure{Kind: kind, Message: msg},
		FetchedAt: time.Now(),
	}
}

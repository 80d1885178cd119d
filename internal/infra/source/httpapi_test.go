package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

func fastRetryConfig(a *HTTPAdapter, maxRetries int) {
	a.retry.MaxRetries = maxRetries
	a.retry.BaseDelay = time.Millisecond
	a.retry.MaxDelay = 5 * time.Millisecond
	a.retry.Jitter = false
}

func TestHTTPAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "sunkist zero" {
			t.Errorf("query param q = %q, want %q", got, "sunkist zero")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"name":"Sunkist Zero 1.25l","price":3.50,"size":"1.25l","in_stock":true,"url":"https://x/1"},
			{"name":"Sunkist Zero Cans","price":"$22.00","size":"24 x 375ml","in_stock":false,"url":"https://x/2"}
		]}`))
	}))
	defer srv.Close()

	a := NewHTTPAdapter(HTTPConfig{Name: "coles", URL: srv.URL})
	outcome := a.FetchCandidates(context.Background(), []string{"sunkist zero"})

	if !outcome.OK() {
		t.Fatalf("unexpected failure: %v", outcome.Failure)
	}
	if outcome.Source != "coles" {
		t.Errorf("source = %q, want coles", outcome.Source)
	}
	if len(outcome.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(outcome.Records))
	}
	want := domain.RawRecord{
		Name: "Sunkist Zero 1.25l", PriceText: "3.5", SizeText: "1.25l",
		InStock: true, URL: "https://x/1",
	}
	if outcome.Records[0] != want {
		t.Errorf("record[0] = %+v, want %+v", outcome.Records[0], want)
	}
	if outcome.Records[1].PriceText != "$22.00" {
		t.Errorf("string price passed through as %q", outcome.Records[1].PriceText)
	}
}

func TestHTTPAdapterRetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"products":[{"name":"Soda","price":2,"size":"375ml","in_stock":true,"url":"u"}]}`))
	}))
	defer srv.Close()

	a := NewHTTPAdapter(HTTPConfig{Name: "woolworths", URL: srv.URL})
	fastRetryConfig(a, 3)

	outcome := a.FetchCandidates(context.Background(), nil)
	if !outcome.OK() {
		t.Fatalf("unexpected failure after retries: %v", outcome.Failure)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestHTTPAdapterExhaustedRetriesBecomeFailureOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewHTTPAdapter(HTTPConfig{Name: "amazon", URL: srv.URL})
	fastRetryConfig(a, 1)

	outcome := a.FetchCandidates(context.Background(), nil)
	if outcome.OK() {
		t.Fatal("expected a failure outcome")
	}
	if outcome.Failure.Kind != domain.FailureTransient {
		t.Errorf("failure kind = %q, want transient", outcome.Failure.Kind)
	}
}

func TestHTTPAdapterMalformedBodyIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer srv.Close()

	a := NewHTTPAdapter(HTTPConfig{Name: "coles", URL: srv.URL})
	fastRetryConfig(a, 0)

	outcome := a.FetchCandidates(context.Background(), nil)
	if outcome.OK() {
		t.Fatal("expected a failure outcome")
	}
	if outcome.Failure.Kind != domain.FailureParse {
		t.Errorf("failure kind = %q, want parse", outcome.Failure.Kind)
	}
}

func TestClassifyFetchError(t *testing.T) {
	tests := []struct {
		msg  string
		want domain.FailureKind
	}{
		{"rate limited (429), retry after: 30", domain.FailureTransient},
		{"connection reset by peer", domain.FailureTransient},
		{"unmarshal coles response: invalid character '<'", domain.FailureParse},
		{"context deadline exceeded", domain.FailureTimeout},
	}
	for _, tt := range tests {
		if got := ClassifyFetchError(errOf(tt.msg)); got != tt.want {
			t.Errorf("ClassifyFetchError(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

type stringError string

func (e stringError) Error() string { return string(e) }

func errOf(s string) error { return stringError(s) }

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vietddude/pricewatch/internal/core/domain"
	"github.com/vietddude/pricewatch/internal/infra/retry"
)

// HTTPConfig holds settings for a JSON-over-HTTP source.
type HTTPConfig struct {
	Name       string        `yaml:"name"`
	URL        string        `yaml:"url"`
	QueryParam string        `yaml:"query_param"` // defaults to "q"
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// HTTPAdapter fetches candidates from a source (or its extraction
// sidecar) that exposes the wire contract below. How the records were
// extracted upstream is not this adapter's concern.
type HTTPAdapter struct {
	cfg    HTTPConfig
	client *resty.Client
	retry  retry.Config
}

// wireResponse is the JSON shape every HTTP source speaks.
type wireResponse struct {
	Products []wireProduct `json:"products"`
}

type wireProduct struct {
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"` // number or string, sources disagree
	Size     string          `json:"size"`
	InStock  bool            `json:"in_stock"`
	URL      string          `json:"url"`
	Delivery string          `json:"delivery,omitempty"`
}

// NewHTTPAdapter creates an adapter for one configured HTTP source.
func NewHTTPAdapter(cfg HTTPConfig) *HTTPAdapter {
	if cfg.QueryParam == "" {
		cfg.QueryParam = "q"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeaders(randomHeaders())

	retryCfg := retry.DefaultConfig
	if cfg.MaxRetries > 0 {
		retryCfg.MaxRetries = cfg.MaxRetries
	}

	return &HTTPAdapter{cfg: cfg, client: client, retry: retryCfg}
}

func (a *HTTPAdapter) Name() string { return a.cfg.Name }

// FetchCandidates queries the source once per run, retrying transient
// failures internally. All failures come back as outcomes, never errors.
func (a *HTTPAdapter) FetchCandidates(ctx context.Context, queryTerms []string) (outcome domain.SourceOutcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome = domain.Failed(a.cfg.Name, domain.FailureParse, fmt.Sprintf("panic in adapter: %v", r))
			outcome.Duration = time.Since(start)
		}
	}()

	records, err := retry.DoValue(ctx, a.retry, func(ctx context.Context) ([]domain.RawRecord, error) {
		return a.fetchOnce(ctx, queryTerms)
	})
	if err != nil {
		outcome = domain.Failed(a.cfg.Name, ClassifyFetchError(err), err.Error())
		outcome.Duration = time.Since(start)
		return outcome
	}

	return domain.SourceOutcome{
		Source:    a.cfg.Name,
		Records:   records,
		Duration:  time.Since(start),
		FetchedAt: time.Now(),
	}
}

func (a *HTTPAdapter) fetchOnce(ctx context.Context, queryTerms []string) ([]domain.RawRecord, error) {
	params := url.Values{}
	for _, term := range queryTerms {
		params.Add(a.cfg.QueryParam, term)
	}

	req := a.client.R().
		SetContext(ctx).
		SetHeaders(randomHeaders()).
		SetQueryParamsFromValues(params)

	resp, err := req.Get(a.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", a.cfg.Name, err)
	}

	switch resp.StatusCode() {
	case 200:
	case 429:
		return nil, fmt.Errorf("rate limited (429), retry after: %s", resp.Header().Get("Retry-After"))
	case 403:
		return nil, fmt.Errorf("blocked or challenged (403)")
	default:
		return nil, fmt.Errorf("http %d from %s", resp.StatusCode(), a.cfg.Name)
	}

	var wire wireResponse
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, fmt.Errorf("unmarshal %s response: %w", a.cfg.Name, err)
	}

	records := make([]domain.RawRecord, 0, len(wire.Products))
	for _, p := range wire.Products {
		records = append(records, domain.RawRecord{
			Name:         p.Name,
			PriceText:    priceText(p.Price),
			SizeText:     p.Size,
			InStock:      p.InStock,
			URL:          p.URL,
			DeliveryInfo: p.Delivery,
		})
	}
	return records, nil
}

// priceText flattens a JSON price (number or string) to the loose text
// form normalization expects.
func priceText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return fmt.Sprintf("%g", f)
	}
	return ""
}

// Package retry wraps a fallible operation with bounded exponential
// backoff. Adapters use it around network calls; the pipeline never
// retries above the source boundary.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Config defines retry behavior.
type Config struct {
	MaxRetries      int           // retries after the first attempt
	BaseDelay       time.Duration // delay before the first retry
	MaxDelay        time.Duration // cap on any single delay
	ExponentialBase float64       // growth factor between attempts
	Jitter          bool          // scale each delay by a uniform factor in [0.5, 1.0)
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	MaxRetries:      3,
	BaseDelay:       1 * time.Second,
	MaxDelay:        60 * time.Second,
	ExponentialBase: 2.0,
	Jitter:          true,
}

// Operation is a single fallible call.
type Operation func(ctx context.Context) error

// Do runs op up to MaxRetries+1 times, sleeping Backoff(i) between
// attempts. The last failure is returned unchanged; success returns
// immediately without further attempts.
func Do(ctx context.Context, cfg Config, op Operation) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxRetries {
			slog.Warn("retries exhausted",
				"attempts", cfg.MaxRetries+1, "error", err)
			break
		}

		delay := Backoff(attempt, cfg)
		if cfg.Jitter {
			delay = time.Duration(float64(delay) * (0.5 + rand.Float64()*0.5))
		}
		slog.Debug("retrying after failure",
			"attempt", attempt+1, "of", cfg.MaxRetries+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}

// Backoff returns the raw delay after the given 0-indexed failed attempt:
// min(BaseDelay * ExponentialBase^attempt, MaxDelay), before jitter.
func Backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.ExponentialBase, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}

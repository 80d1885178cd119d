// Package redis stores the most recent pipeline result for presentation
// collaborators (dashboard, bots). The core pipeline stays stateless;
// whoever wants "the latest run" reads it from here.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

const latestResultKey = "pricewatch:latest_result"

// Config holds Redis connection configuration.
type Config struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"ttl"` // 0 = keep until next run overwrites
}

// Client wraps Redis operations for result snapshots.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb, ttl: cfg.TTL}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// PublishResult stores the serialized pipeline result under the snapshot
// key, replacing the previous run.
func (c *Client) PublishResult(ctx context.Context, result *domain.PipelineResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := c.rdb.Set(ctx, latestResultKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

// LatestResult fetches the most recent pipeline result, or nil when no
// run has been published yet.
func (c *Client) LatestResult(ctx context.Context) (*domain.PipelineResult, error) {
	data, err := c.rdb.Get(ctx, latestResultKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest result: %w", err)
	}

	var result domain.PipelineResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest result: %w", err)
	}
	return &result, nil
}

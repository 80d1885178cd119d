package config

import (
	"time"

	redisclient "github.com/vietddude/pricewatch/internal/infra/redis"
	"github.com/vietddude/pricewatch/internal/infra/source"
	"github.com/vietddude/pricewatch/internal/infra/storage/postgres"
	"github.com/vietddude/pricewatch/internal/notify"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig        `yaml:"server"`
	Tracker  TrackerConfig       `yaml:"tracker"`
	Sources  []source.HTTPConfig `yaml:"sources"`
	Schedule ScheduleConfig      `yaml:"schedule"`
	Database postgres.Config     `yaml:"database"`
	Redis    redisclient.Config  `yaml:"redis"`
	Notify   notify.Config       `yaml:"notify"`
	Logging  LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TrackerConfig holds the product search settings.
type TrackerConfig struct {
	QueryTerms    []string      `yaml:"query_terms"`
	RunTimeout    time.Duration `yaml:"run_timeout"`    // deadline for one fan-out cycle
	RetentionDays int           `yaml:"retention_days"` // 0 = keep history forever
}

// ScheduleConfig holds the daily run times for serve mode.
type ScheduleConfig struct {
	Times      []string `yaml:"times"` // local "HH:MM"
	RunOnStart bool     `yaml:"run_on_start"`
}

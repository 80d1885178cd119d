package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Tracker.RunTimeout == 0 {
		cfg.Tracker.RunTimeout = 90 * time.Second
	}
	if len(cfg.Schedule.Times) == 0 {
		cfg.Schedule.Times = []string{"08:00", "18:00"}
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].Timeout == 0 {
			cfg.Sources[i].Timeout = 30 * time.Second
		}
	}

	return &cfg, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
tracker:
  query_terms: ["sunkist zero sugar"]
  run_timeout: 45s
  retention_days: 90
schedule:
  times: ["07:30", "19:30"]
  run_on_start: true
sources:
  - name: coles
    url: https://api.example.com/coles
    query_param: searchTerm
    timeout: 20s
    max_retries: 2
database:
  url: postgres://localhost/pricewatch
redis:
  url: redis://localhost:6379
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Tracker.RunTimeout != 45*time.Second {
		t.Errorf("run timeout = %v, want 45s", cfg.Tracker.RunTimeout)
	}
	if cfg.Tracker.RetentionDays != 90 {
		t.Errorf("retention days = %d, want 90", cfg.Tracker.RetentionDays)
	}
	if len(cfg.Schedule.Times) != 2 || cfg.Schedule.Times[0] != "07:30" {
		t.Errorf("schedule times = %v", cfg.Schedule.Times)
	}
	if len(cfg.Sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(cfg.Sources))
	}
	src := cfg.Sources[0]
	if src.Name != "coles" || src.QueryParam != "searchTerm" || src.Timeout != 20*time.Second {
		t.Errorf("unexpected source config: %+v", src)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: coles
    url: https://api.example.com/coles
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Tracker.RunTimeout != 90*time.Second {
		t.Errorf("default run timeout = %v, want 90s", cfg.Tracker.RunTimeout)
	}
	if len(cfg.Schedule.Times) != 2 || cfg.Schedule.Times[0] != "08:00" || cfg.Schedule.Times[1] != "18:00" {
		t.Errorf("default schedule times = %v, want [08:00 18:00]", cfg.Schedule.Times)
	}
	if cfg.Sources[0].Timeout != 30*time.Second {
		t.Errorf("default source timeout = %v, want 30s", cfg.Sources[0].Timeout)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("PW_TEST_DB_URL", "postgres://envhost/prices")
	path := writeConfig(t, `
database:
  url: ${PW_TEST_DB_URL}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "postgres://envhost/prices" {
		t.Errorf("database url = %q, want expanded env value", cfg.Database.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "sources: [not closed")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

package health

import (
	"sync"
	"time"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

// Status represents the health status of a source or the whole service.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// SourceHealth holds health details for a single price source.
type SourceHealth struct {
	Source         string    `json:"source"`
	Status         Status    `json:"status"`
	LastSuccess    time.Time `json:"last_success,omitempty"`
	LastAttempt    time.Time `json:"last_attempt,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	RecordCount    int       `json:"record_count"`
	ConsecFailures int       `json:"consecutive_failures"`
}

// Monitor aggregates health status from pipeline run outcomes.
type Monitor struct {
	staleAfter time.Duration
	sources    map[string]SourceHealth
	lastRun    time.Time
	mu         sync.RWMutex
}

// NewMonitor creates a new health monitor. staleAfter controls when a
// source with no recent successful fetch is reported as critical.
func NewMonitor(staleAfter time.Duration) *Monitor {
	if staleAfter == 0 {
		staleAfter = 24 * time.Hour
	}
	return &Monitor{
		staleAfter: staleAfter,
		sources:    make(map[string]SourceHealth),
	}
}

// ObserveRun records the outcomes of a completed pipeline run.
func (m *Monitor) ObserveRun(result *domain.PipelineResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRun = result.CompletedAt
	for name, outcome := range result.Outcomes {
		sh := m.sources[name]
		sh.Source = name
		sh.LastAttempt = result.CompletedAt
		if outcome.OK() {
			sh.LastSuccess = result.CompletedAt
			sh.LastError = ""
			sh.RecordCount = len(outcome.Records)
			sh.ConsecFailures = 0
		} else {
			sh.LastError = outcome.Failure.Error()
			sh.RecordCount = 0
			sh.ConsecFailures++
		}
		m.sources[name] = sh
	}
}

// CheckHealth returns a per-source health report.
func (m *Monitor) CheckHealth() map[string]SourceHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := make(map[string]SourceHealth, len(m.sources))
	for name, sh := range m.sources {
		sh.Status = StatusHealthy
		if sh.ConsecFailures > 0 {
			sh.Status = StatusDegraded
		}
		if sh.ConsecFailures >= 3 || (!sh.LastSuccess.IsZero() && time.Since(sh.LastSuccess) > m.staleAfter) {
			sh.Status = StatusCritical
		}
		if sh.LastSuccess.IsZero() && sh.LastAttempt.IsZero() {
			sh.Status = StatusDegraded
		}
		report[name] = sh
	}
	return report
}

// LastRun returns the completion time of the most recent run.
func (m *Monitor) LastRun() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRun
}

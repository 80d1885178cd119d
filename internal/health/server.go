package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	monitor *Monitor
	server  *http.Server
}

// healthResponse is the aggregate served on /health. Failing names let an
// operator see at a glance which retailer feed is misbehaving without
// fetching the detailed report.
type healthResponse struct {
	Status  Status   `json:"status"`
	Sources int      `json:"sources"`
	Failing []string `json:"failing_sources,omitempty"`
	LastRun string   `json:"last_run,omitempty"`
}

// NewServer creates a new health server.
func NewServer(monitor *Monitor, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		monitor: monitor,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth()

	// Worst source wins; anything not healthy is named in the response.
	status := StatusHealthy
	var failing []string
	for name, src := range report {
		if src.Status == StatusHealthy {
			continue
		}
		failing = append(failing, name)
		if src.Status == StatusCritical {
			status = StatusCritical
		} else if status == StatusHealthy {
			status = StatusDegraded
		}
	}
	sort.Strings(failing)

	response := healthResponse{
		Status:  status,
		Sources: len(report),
		Failing: failing,
	}
	if last := s.monitor.LastRun(); !last.IsZero() {
		response.LastRun = last.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) healthResponse {
	t.Helper()
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleHealthAllSourcesOK(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.ObserveRun(runResult(time.Now(), map[string]bool{"coles": true, "woolworths": true}))
	s := NewServer(m, 0)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != StatusHealthy || resp.Sources != 2 || len(resp.Failing) != 0 {
		t.Errorf("response = %+v, want healthy over 2 sources with none failing", resp)
	}
	if resp.LastRun == "" {
		t.Error("response missing last_run")
	}
}

func TestHandleHealthNamesFailingSources(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.ObserveRun(runResult(time.Now(), map[string]bool{
		"coles": true, "woolworths": false, "amazon": false,
	}))
	s := NewServer(m, 0)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 while only degraded", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != StatusDegraded {
		t.Errorf("status = %s, want degraded", resp.Status)
	}
	if len(resp.Failing) != 2 || resp.Failing[0] != "amazon" || resp.Failing[1] != "woolworths" {
		t.Errorf("failing = %v, want [amazon woolworths] sorted", resp.Failing)
	}
}

func TestHandleHealthCriticalIs503(t *testing.T) {
	m := NewMonitor(time.Hour)
	for i := 0; i < 3; i++ {
		m.ObserveRun(runResult(time.Now(), map[string]bool{"amazon": false}))
	}
	s := NewServer(m, 0)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if resp := decodeHealth(t, rec); resp.Status != StatusCritical {
		t.Errorf("status = %s, want critical", resp.Status)
	}
}

func TestHandleDetailedReport(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.ObserveRun(runResult(time.Now(), map[string]bool{"coles": false}))
	s := NewServer(m, 0)

	rec := httptest.NewRecorder()
	s.handleDetailed(rec, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))

	var report map[string]SourceHealth
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	sh, ok := report["coles"]
	if !ok {
		t.Fatal("report missing coles")
	}
	if sh.LastError == "" || sh.ConsecFailures != 1 {
		t.Errorf("coles health = %+v, want recorded failure", sh)
	}
}

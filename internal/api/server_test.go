package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slice/discord-package-exporter/internal/progress"
)

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(8790, "run-1", &progress.Tracker{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestImportStatusEndpoint(t *testing.T) {
	tracker := &progress.Tracker{}
	tracker.Channel("c100", 3)
	tracker.Row("c100", 0, 3)
	srv := NewServer(8790, "run-1", tracker)

	req := httptest.NewRequest("GET", "/api/v1/import/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["run_id"] != "run-1" {
		t.Errorf("expected run_id run-1, got %v", body["run_id"])
	}
	if body["channel"] != "c100" {
		t.Errorf("expected channel c100, got %v", body["channel"])
	}
	if body["total"] != float64(3) || body["messages_processed"] != float64(1) {
		t.Errorf("unexpected counters: %v", body)
	}
	if body["finished"] != false {
		t.Errorf("expected finished false, got %v", body["finished"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := NewServer(8790, "run-1", &progress.Tracker{})

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

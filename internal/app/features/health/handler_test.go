package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/guardduty/internal/app/features/health"
	"github.com/dalemusser/guardduty/internal/testutil"
	"go.uber.org/zap"
)

type fixedCounts struct{ res, users int }

func (f fixedCounts) Stats() (int, int) { return f.res, f.users }

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), fixedCounts{res: 12, users: 4}, zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}

	var response struct {
		Status       string `json:"status"`
		Database     string `json:"database"`
		Reservations int    `json:"reservations"`
		Users        int    `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Status != "ok" || response.Database != "connected" {
		t.Errorf("response = %+v", response)
	}
	if response.Reservations != 12 || response.Users != 4 {
		t.Errorf("counts = %d/%d, want 12/4", response.Reservations, response.Users)
	}
}

func TestServe_DatabaseDisconnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	client := db.Client()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	handler := health.NewHandler(client, nil, zap.NewNop())
	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

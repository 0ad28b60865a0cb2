package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/guardduty/internal/app/store/audit"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (m *memRecorder) Log(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	req := httptest.NewRequest("GET", "/", nil)

	// These should all be no-ops, not panic.
	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.LoginSuccess(context.Background(), req, "u1", "google")
	logger.SwapFailed(context.Background(), req, "u1", "user_not_found")
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting  string
		wantDB   int
		wantLogs int
	}{
		{"all", 1, 1},
		{"db", 1, 0},
		{"log", 0, 1},
		{"off", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			rec := &memRecorder{}
			core, logs := observer.New(zap.InfoLevel)
			logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: "all", Schedule: tt.setting})

			req := httptest.NewRequest("POST", "/calendar/reservations", nil)
			req.RemoteAddr = "10.1.2.3:4444"
			logger.ReservationCommitted(context.Background(), req, "u1", []string{"2024-06-12", "2024-06-13"})

			if len(rec.events) != tt.wantDB {
				t.Errorf("stored %d events, want %d", len(rec.events), tt.wantDB)
			}
			if logs.Len() != tt.wantLogs {
				t.Errorf("logged %d entries, want %d", logs.Len(), tt.wantLogs)
			}
			if tt.wantDB == 1 {
				e := rec.events[0]
				if e.IP != "10.1.2.3" || e.Details["from"] != "2024-06-12" || e.Details["days"] != "2" {
					t.Errorf("event = %+v", e)
				}
			}
		})
	}
}

func TestLogger_StoreFailureIsLogged(t *testing.T) {
	rec := &memRecorder{err: errors.New("insert failed")}
	core, logs := observer.New(zap.ErrorLevel)
	logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: "db", Schedule: "db"})

	logger.Logout(context.Background(), httptest.NewRequest("GET", "/logout", nil), "u1")

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}

func TestLogger_SwapFailedOmitsCode(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Schedule: "db"})

	logger.SwapFailed(context.Background(), httptest.NewRequest("POST", "/swap", nil), "u1", "user_not_found")

	if len(rec.events) != 1 {
		t.Fatalf("stored %d events", len(rec.events))
	}
	e := rec.events[0]
	if e.Success || e.FailureReason != "user_not_found" || len(e.Details) != 0 {
		t.Errorf("event = %+v", e)
	}
}

package auditlog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/guardduty/internal/app/features/auditlog"
	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/store/audit"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"github.com/dalemusser/guardduty/internal/testutil"
	"go.uber.org/zap"
)

type fakeEvents struct {
	got    audit.QueryFilter
	events []audit.Event
	err    error
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.got = filter
	return f.events, f.err
}

func newTestHandler(t *testing.T, events *fakeEvents) *auditlog.Handler {
	t.Helper()
	jlm, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	svc := scheduling.New(nil, zap.NewNop(), scheduling.WithLocation(jlm))
	svc.Apply(scheduling.Snapshot{Users: []models.User{
		{ID: "u1", Name: "Dana", LastName: "Levi"},
		{ID: "u2", Name: "Omer", LastName: "Cohen"},
	}})
	logger := zap.NewNop()
	return auditlog.NewHandler(events, svc, uierrors.NewErrorLogger(logger), logger)
}

func TestServeList_ResolvesNames(t *testing.T) {
	events := &fakeEvents{events: []audit.Event{
		{Category: audit.CategorySchedule, EventType: audit.EventSwapCompleted, UserID: "u1", PeerID: "u2", Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: "gone", Success: true},
	}}
	h := newTestHandler(t, events)

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/admin/audit", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Events []struct {
			UserName string `json:"user_name"`
			PeerName string `json:"peer_name"`
		} `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("events = %+v", resp.Events)
	}
	if resp.Events[0].UserName != "Dana Levi" || resp.Events[0].PeerName != "Omer Cohen" {
		t.Errorf("first = %+v", resp.Events[0])
	}
	if resp.Events[1].UserName != "" {
		t.Errorf("unknown user resolved to %q", resp.Events[1].UserName)
	}
	if events.got.Limit != 50 {
		t.Errorf("default limit = %d", events.got.Limit)
	}
}

func TestServeList_Filters(t *testing.T) {
	events := &fakeEvents{}
	h := newTestHandler(t, events)

	target := "/admin/audit?category=schedule&event_type=swap_failed&user_id=u1&start_date=2024-06-01&end_date=2024-06-30&limit=9999"
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"events":[]`)

	f := events.got
	if f.Category != "schedule" || f.EventType != "swap_failed" || f.UserID != "u1" || f.Limit != 500 {
		t.Errorf("filter = %+v", f)
	}
	// Midnight in Jerusalem (UTC+3 in June) is 21:00 UTC the day before.
	if f.StartTime == nil || !f.StartTime.Equal(time.Date(2024, 5, 31, 21, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", f.StartTime)
	}
	if f.EndTime == nil || !f.EndTime.Before(time.Date(2024, 6, 30, 21, 0, 0, 0, time.UTC)) ||
		f.EndTime.Before(time.Date(2024, 6, 30, 20, 59, 59, 0, time.UTC)) {
		t.Errorf("end = %v", f.EndTime)
	}
}

func TestServeList_BadInput(t *testing.T) {
	h := newTestHandler(t, &fakeEvents{})

	for _, target := range []string{
		"/admin/audit?limit=0",
		"/admin/audit?limit=ten",
		"/admin/audit?start_date=June",
		"/admin/audit?end_date=2024-06-31",
	} {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser()))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", target, rec.Code)
		}
	}
}

func TestServeList_StoreError(t *testing.T) {
	h := newTestHandler(t, &fakeEvents{err: errors.New("connection reset")})

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/admin/audit", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusInternalServerError)
}

package admin_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/guardduty/internal/app/features/admin"
	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"github.com/dalemusser/guardduty/internal/testutil"
	"go.uber.org/zap"
)

func reserve(u models.User, keys ...string) []models.Reservation {
	out := make([]models.Reservation, len(keys))
	for i, k := range keys {
		out[i] = models.Reservation{DateKey: k, UserID: u.ID, User: u}
	}
	return out
}

func newTestHandler(t *testing.T) *admin.Handler {
	t.Helper()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := scheduling.New(nil, zap.NewNop(),
		scheduling.WithClock(func() time.Time { return now }),
		scheduling.WithLocation(time.UTC))

	boss := models.User{ID: "admin-1", Name: "Boss", IsAdmin: true}
	dana := models.User{ID: "u1", Name: "Dana"}
	omer := models.User{ID: "u2", Name: "Omer"}

	var res []models.Reservation
	res = append(res, reserve(dana, "2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04",
		"2024-06-05", "2024-06-06", "2024-06-07")...)
	res = append(res, reserve(omer, "2024-06-11", "2024-06-12", "2024-06-13",
		"2024-06-14", "2024-06-15", "2024-06-16")...)
	// Other months do not count.
	res = append(res, reserve(omer, "2024-05-30", "2024-07-01")...)
	svc.Apply(scheduling.Snapshot{Users: []models.User{boss, dana, omer}, Reservations: res})

	logger := zap.NewNop()
	return admin.NewHandler(svc, uierrors.NewErrorLogger(logger), auditlog.NewNopLogger(), logger)
}

func TestServeReport(t *testing.T) {
	h := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeReport(rec, testutil.NewAuthenticatedRequest("GET", "/admin/report", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Month     string `json:"month"`
		Threshold int    `json:"threshold"`
		Users     []struct {
			UserID string `json:"user_id"`
			Count  int    `json:"count"`
		} `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Month != "2024-06" || resp.Threshold != 7 {
		t.Errorf("month=%q threshold=%d", resp.Month, resp.Threshold)
	}

	// Directory order: the admin with none, then Omer with six. Dana has seven.
	if len(resp.Users) != 2 {
		t.Fatalf("users = %+v", resp.Users)
	}
	if resp.Users[0].UserID != "admin-1" || resp.Users[0].Count != 0 {
		t.Errorf("first = %+v", resp.Users[0])
	}
	if resp.Users[1].UserID != "u2" || resp.Users[1].Count != 6 {
		t.Errorf("second = %+v", resp.Users[1])
	}
}

func TestServeReport_NonAdminRefused(t *testing.T) {
	h := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeReport(rec, testutil.NewAuthenticatedRequest("GET", "/admin/report", testutil.MemberUser("u1")))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestRoutes_NonAdminBrowserRedirected(t *testing.T) {
	h := newTestHandler(t)
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "guardduty-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	router := admin.Routes(h, sm)

	req := testutil.NewAuthenticatedRequest("GET", "/report", testutil.MemberUser("u1"))
	req.Header.Set("Accept", "text/html")
	rec := &testutil.ResponseRecorder{ResponseRecorder: httptest.NewRecorder()}
	router.ServeHTTP(rec, req)
	rec.AssertRedirect(t, "/dashboard")

	req = testutil.NewAuthenticatedRequest("GET", "/report", testutil.AdminUser())
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}

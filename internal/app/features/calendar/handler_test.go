package calendar_test

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/guardduty/internal/app/features/calendar"
	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"github.com/dalemusser/guardduty/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*calendar.Handler, *scheduling.Service) {
	t.Helper()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := scheduling.New(nil, zap.NewNop(),
		scheduling.WithClock(func() time.Time { return now }),
		scheduling.WithLocation(time.UTC))

	dana := models.User{ID: "u1", Name: "Dana", LastName: "Levi", SecretCode: "code-dana"}
	omer := models.User{ID: "u2", Name: "Omer", LastName: "Cohen", SecretCode: "code-omer"}
	res := []models.Reservation{
		{DateKey: "2024-05-30", UserID: "u2", User: omer},
		{DateKey: "2024-06-15", UserID: "u2", User: omer},
		{DateKey: "2024-06-20", UserID: "u1", User: dana},
	}
	svc.Apply(scheduling.Snapshot{Users: []models.User{dana, omer}, Reservations: res})

	logger := zap.NewNop()
	return calendar.NewHandler(svc, uierrors.NewErrorLogger(logger), auditlog.NewNopLogger(), logger), svc
}

func decodeNotice(t *testing.T, rec *testutil.ResponseRecorder) uierrors.Notice {
	t.Helper()
	var n uierrors.Notice
	if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
		t.Fatalf("bad notice body %q: %v", rec.Body.String(), err)
	}
	return n
}

func TestServeMonth(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name      string
		target    string
		wantMonth string
		wantDays  []string
	}{
		{"current month by default", "/calendar", "2024-06", []string{"2024-06-15", "2024-06-20"}},
		{"explicit month", "/calendar?month=2024-05", "2024-05", []string{"2024-05-30"}},
		{"empty month", "/calendar?month=2024-08", "2024-08", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeMonth(rec, testutil.NewAuthenticatedRequest("GET", tt.target, testutil.MemberUser("u1")))
			rec.AssertStatus(t, http.StatusOK)

			var resp struct {
				Month string               `json:"month"`
				Today string               `json:"today"`
				Days  []scheduling.DayView `json:"days"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad body: %v", err)
			}
			if resp.Month != tt.wantMonth || resp.Today != "2024-06-10" {
				t.Errorf("month=%q today=%q", resp.Month, resp.Today)
			}
			got := []string{}
			for _, d := range resp.Days {
				got = append(got, d.Date)
				if d.Mine != (d.UserID == "u1") {
					t.Errorf("%s: mine=%v for owner %s", d.Date, d.Mine, d.UserID)
				}
			}
			if !reflect.DeepEqual(got, tt.wantDays) {
				t.Errorf("days = %v, want %v", got, tt.wantDays)
			}
		})
	}
}

func TestServeMonth_BadMonth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	h.ServeMonth(rec, testutil.NewAuthenticatedRequest("GET", "/calendar?month=june", testutil.MemberUser("u1")))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeDay(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name   string
		date   string
		status int
		want   string
	}{
		{"reserved", "2024-06-15", http.StatusOK, `"last_name":"Cohen"`},
		{"free", "2024-06-16", http.StatusNotFound, `"code":"not_reserved"`},
		{"malformed", "16-06-2024", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest("GET", "/calendar/days/"+tt.date, testutil.MemberUser("u1"))
			req = testutil.WithChiURLParam(req, "date", tt.date)
			rec := testutil.NewRecorder()
			h.ServeDay(rec, req)

			rec.AssertStatus(t, tt.status)
			if tt.want != "" {
				rec.AssertContains(t, tt.want)
			}
		})
	}
}

func TestHandleValidate(t *testing.T) {
	h, svc := newTestHandler(t)
	before := svc.Snapshot()

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, rec *testutil.ResponseRecorder)
	}{
		{
			name:   "valid range",
			body:   `{"start":"2024-06-11","end":"2024-06-13"}`,
			status: http.StatusOK,
			check: func(t *testing.T, rec *testutil.ResponseRecorder) {
				var sel struct {
					Days []string `json:"days"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &sel); err != nil {
					t.Fatalf("bad body: %v", err)
				}
				if !reflect.DeepEqual(sel.Days, []string{"2024-06-11", "2024-06-12", "2024-06-13"}) {
					t.Errorf("days = %v", sel.Days)
				}
			},
		},
		{
			name:   "single day",
			body:   `{"start":"2024-06-11","end":"2024-06-11"}`,
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, rec *testutil.ResponseRecorder) {
				if n := decodeNotice(t, rec); n.Code != "range_too_short" {
					t.Errorf("code = %q", n.Code)
				}
			},
		},
		{
			name:   "inverted",
			body:   `{"start":"2024-06-18","end":"2024-06-12"}`,
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, rec *testutil.ResponseRecorder) {
				n := decodeNotice(t, rec)
				if n.Code != "range_inverted" || n.RestartFrom != "2024-06-12" {
					t.Errorf("notice = %+v", n)
				}
			},
		},
		{
			name:   "overlap",
			body:   `{"start":"2024-06-14","end":"2024-06-16"}`,
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, rec *testutil.ResponseRecorder) {
				n := decodeNotice(t, rec)
				if n.Code != "range_overlap" || !reflect.DeepEqual(n.Days, []string{"2024-06-15"}) {
					t.Errorf("notice = %+v", n)
				}
			},
		},
		{
			name:   "past",
			body:   `{"start":"2024-06-01","end":"2024-06-03"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "malformed date",
			body:   `{"start":"tomorrow","end":"2024-06-03"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   `{"start":"2024-06-11","end":"2024-06-13","user":"u2"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.NewJSONRequest("POST", "/calendar/validate", tt.body), testutil.MemberUser("u1"))
			rec := testutil.NewRecorder()
			h.HandleValidate(rec, req)

			rec.AssertStatus(t, tt.status)
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}

	if !reflect.DeepEqual(before, svc.Snapshot()) {
		t.Error("validate changed the ledger")
	}
}

func TestHandleCommit(t *testing.T) {
	h, svc := newTestHandler(t)

	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/calendar/reservations",
		`{"start":"2024-06-11","end":"2024-06-12"}`), testutil.MemberUser("u1"))
	rec := testutil.NewRecorder()
	h.HandleCommit(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var resp struct {
		Days   []string         `json:"days"`
		Notice *uierrors.Notice `json:"notice"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !reflect.DeepEqual(resp.Days, []string{"2024-06-11", "2024-06-12"}) {
		t.Errorf("days = %v", resp.Days)
	}
	if resp.Notice != nil {
		t.Errorf("unexpected notice %+v", resp.Notice)
	}
	if got := svc.ReservationsOf("u1"); !reflect.DeepEqual(got, []string{"2024-06-11", "2024-06-12", "2024-06-20"}) {
		t.Errorf("u1 reservations = %v", got)
	}

	// Committing the same range again overlaps the days just taken.
	req = testutil.WithUser(testutil.NewJSONRequest("POST", "/calendar/reservations",
		`{"start":"2024-06-11","end":"2024-06-12"}`), testutil.MemberUser("u2"))
	rec = testutil.NewRecorder()
	h.HandleCommit(rec, req)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestHandleCommit_UnknownActor(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/calendar/reservations",
		`{"start":"2024-06-11","end":"2024-06-12"}`), testutil.MemberUser("ghost"))
	rec := testutil.NewRecorder()
	h.HandleCommit(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

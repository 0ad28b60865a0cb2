// internal/app/features/calendar/handler.go
package calendar

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
	"github.com/dalemusser/guardduty/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Svc      *scheduling.Service
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(svc *scheduling.Service, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

type monthResponse struct {
	Month string               `json:"month"`
	Today string               `json:"today"`
	Days  []scheduling.DayView `json:"days"`
}

// ServeMonth handles GET /calendar?month=YYYY-MM. Without a month the current
// one is shown.
func (h *Handler) ServeMonth(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	now := h.Svc.Now()
	year, month := now.Year(), now.Month()

	if m := query.Get(r, "month"); m != "" {
		y, mo, err := datekey.ParseMonth(m)
		if err != nil {
			uierrors.RenderBadRequest(w, r, err.Error())
			return
		}
		year, month = y, mo
	}

	httpjson.Write(w, http.StatusOK, monthResponse{
		Month: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		Today: datekey.Today(now, h.Svc.Location()),
		Days:  h.Svc.MonthView(su.ID, year, month),
	})
}

type reservistResponse struct {
	Date     string  `json:"date"`
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	LastName string  `json:"last_name"`
	Rank     string  `json:"rank"`
	Email    *string `json:"email,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

// ServeDay handles GET /calendar/days/{date}: who holds that day.
func (h *Handler) ServeDay(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "date")
	if _, err := datekey.Parse(key, h.Svc.Location()); err != nil {
		uierrors.RenderBadRequest(w, r, err.Error())
		return
	}

	u, err := h.Svc.Reservist(key)
	if err != nil {
		h.ErrLog.LogScheduling(w, r, "reservist lookup", err)
		return
	}
	httpjson.Write(w, http.StatusOK, reservistResponse{
		Date:     key,
		UserID:   u.ID,
		Name:     u.Name,
		LastName: u.LastName,
		Rank:     u.Rank,
		Email:    u.Email,
		PhotoURL: u.PhotoURL,
	})
}

type rangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

var errBadRange = errors.New("start and end must be dates in YYYY-MM-DD form")

func (h *Handler) decodeRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, error) {
	var req rangeRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, err := datekey.Parse(req.Start, h.Svc.Location())
	if err != nil {
		return time.Time{}, time.Time{}, errBadRange
	}
	to, err := datekey.Parse(req.End, h.Svc.Location())
	if err != nil {
		return time.Time{}, time.Time{}, errBadRange
	}
	return from, to, nil
}

// HandleValidate handles POST /calendar/validate. A valid range answers with
// the days it covers; an invalid one with the notice explaining why.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.decodeRange(w, r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "validate range: bad body", err, errBadRange.Error())
		return
	}

	sel, err := h.Svc.Validate(from, to)
	if err != nil {
		h.ErrLog.LogScheduling(w, r, "validate range", err)
		return
	}
	httpjson.Write(w, http.StatusOK, sel)
}

type commitResponse struct {
	Days   []string         `json:"days"`
	Notice *uierrors.Notice `json:"notice,omitempty"`
}

// HandleCommit handles POST /calendar/reservations.
func (h *Handler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	from, to, err := h.decodeRange(w, r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "commit range: bad body", err, errBadRange.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	days, err := h.Svc.Commit(ctx, su.ID, from, to)
	notice := uierrors.PersistenceNotice(err)
	if err != nil && notice == nil {
		h.ErrLog.LogScheduling(w, r, "commit range", err)
		return
	}

	h.AuditLog.ReservationCommitted(ctx, r, su.ID, days)
	httpjson.Write(w, http.StatusCreated, commitResponse{Days: days, Notice: notice})
}

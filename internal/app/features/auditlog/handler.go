// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/store/audit"
	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
	"github.com/dalemusser/guardduty/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Querier reads audit events. *audit.Store implements it.
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

type Handler struct {
	Events Querier
	Svc    *scheduling.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(events Querier, svc *scheduling.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Svc:    svc,
		Log:    logger,
		ErrLog: errLog,
	}
}

type eventItem struct {
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	UserID        string            `json:"user_id,omitempty"`
	UserName      string            `json:"user_name,omitempty"`
	PeerID        string            `json:"peer_id,omitempty"`
	PeerName      string            `json:"peer_name,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// ServeList handles GET /admin/audit, newest first. Filters: category,
// event_type, user_id, start_date and end_date (YYYY-MM-DD, inclusive, in
// the service time zone) and limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		UserID:    query.Get(r, "user_id"),
		Limit:     defaultLimit,
	}

	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			uierrors.RenderBadRequest(w, r, "limit must be a positive number")
			return
		}
		filter.Limit = int64(min(n, maxLimit))
	}
	if s := query.Get(r, "start_date"); s != "" {
		t, err := datekey.Parse(s, h.Svc.Location())
		if err != nil {
			uierrors.RenderBadRequest(w, r, "start_date must be YYYY-MM-DD")
			return
		}
		filter.StartTime = &t
	}
	if s := query.Get(r, "end_date"); s != "" {
		t, err := datekey.Parse(s, h.Svc.Location())
		if err != nil {
			uierrors.RenderBadRequest(w, r, "end_date must be YYYY-MM-DD")
			return
		}
		// End of day
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.EndTime = &end
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events", err, "A database error occurred.")
		return
	}

	items := make([]eventItem, len(events))
	for i, e := range events {
		items[i] = eventItem{
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			UserID:        e.UserID,
			UserName:      h.nameOf(e.UserID),
			PeerID:        e.PeerID,
			PeerName:      h.nameOf(e.PeerID),
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"events": items})
}

// nameOf resolves a user id against the directory. Unknown ids stay blank.
func (h *Handler) nameOf(id string) string {
	if id == "" {
		return ""
	}
	if u, ok := h.Svc.User(id); ok {
		return u.FullName()
	}
	return ""
}

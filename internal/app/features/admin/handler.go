// internal/app/features/admin/handler.go
package admin

import (
	"net/http"

	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
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

type reportRow struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Rank     string `json:"rank"`
	Count    int    `json:"count"`
}

type reportResponse struct {
	Month     string      `json:"month"`
	Threshold int         `json:"threshold"`
	Users     []reportRow `json:"users"`
}

// ServeReport handles GET /admin/report: users with fewer than the threshold
// of duty days in the current month.
func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	now := h.Svc.Now()

	counts, err := h.Svc.MonthlyReport(su.ID, now)
	if err != nil {
		h.ErrLog.LogScheduling(w, r, "monthly report", err)
		return
	}

	rows := make([]reportRow, len(counts))
	for i, c := range counts {
		rows[i] = reportRow{
			UserID:   c.User.ID,
			Name:     c.User.Name,
			LastName: c.User.LastName,
			Rank:     c.User.Rank,
			Count:    c.Count,
		}
	}

	h.AuditLog.ReportViewed(r.Context(), r, su.ID, len(rows))
	httpjson.Write(w, http.StatusOK, reportResponse{
		Month:     now.In(h.Svc.Location()).Format("2006-01"),
		Threshold: scheduling.UnderAssignedThreshold,
		Users:     rows,
	})
}

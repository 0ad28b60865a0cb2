// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Svc    *scheduling.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *scheduling.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Log:    logger,
		ErrLog: errLog,
	}
}

type dashboardResponse struct {
	User         models.User `json:"user"`
	Reservations []string    `json:"reservations"`
	Upcoming     []string    `json:"upcoming"`
	Links        []string    `json:"links"`
}

// ServeDashboard handles GET /dashboard: the signed-in user's profile and
// reserved days. Upcoming holds the days from today on.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	u, ok := h.Svc.User(su.ID)
	if !ok {
		h.ErrLog.LogScheduling(w, r, "dashboard: user not in directory", scheduling.ErrUnknownActor)
		return
	}

	days := h.Svc.ReservationsOf(u.ID)
	today := datekey.Format(h.Svc.Now())
	upcoming := []string{}
	for _, k := range days {
		if k >= today {
			upcoming = append(upcoming, k)
		}
	}

	links := []string{"/calendar", "/swap", "/export.csv"}
	if u.IsAdmin {
		links = append(links, "/admin/report")
	}

	httpjson.Write(w, http.StatusOK, dashboardResponse{
		User:         u,
		Reservations: days,
		Upcoming:     upcoming,
		Links:        links,
	})
}

// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
	"github.com/dalemusser/guardduty/internal/app/system/ratelimit"
	"github.com/dalemusser/guardduty/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

type Handler struct {
	Svc           *scheduling.Service
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	Limiter       *ratelimit.Limiter
	GoogleEnabled bool // True if Google OAuth is configured
	DevEnabled    bool // True in dev with dev_login set
}

func NewHandler(svc *scheduling.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, limiter *ratelimit.Limiter, googleEnabled, devEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:           svc,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		Limiter:       limiter,
		GoogleEnabled: googleEnabled,
		DevEnabled:    devEnabled,
	}
}

type methodsResponse struct {
	Google    bool   `json:"google"`
	Dev       bool   `json:"dev"`
	GoogleURL string `json:"google_url,omitempty"`
	Error     string `json:"error,omitempty"`
	SignedIn  bool   `json:"signed_in"`
}

// ServeLogin handles GET /login: the enabled sign-in methods and any error
// code an aborted sign-in redirected back with.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	resp := methodsResponse{
		Google: h.GoogleEnabled,
		Dev:    h.DevEnabled,
		Error:  query.Get(r, "error"),
	}
	if h.GoogleEnabled {
		resp.GoogleURL = "/auth/google"
		if ret := query.Get(r, "return"); ret != "" {
			resp.GoogleURL += "?return=" + url.QueryEscape(urlutil.SafeReturn(ret, "", "/dashboard"))
		}
	}
	_, resp.SignedIn = auth.CurrentUser(r)
	httpjson.Write(w, http.StatusOK, resp)
}

type devLoginRequest struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Return      string `json:"return"`
}

type devLoginResponse struct {
	UserID   string           `json:"user_id"`
	Name     string           `json:"name"`
	IsAdmin  bool             `json:"is_admin"`
	Redirect string           `json:"redirect"`
	Notice   *uierrors.Notice `json:"notice,omitempty"`
}

// HandleDevLogin handles POST /login/dev. It signs in as any identity without
// a provider round trip and is only routed in development.
func (h *Handler) HandleDevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.DevEnabled {
		uierrors.RenderNotFound(w, r, "Development sign-in is disabled.")
		return
	}
	if h.Limiter != nil && !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		uierrors.RenderTooManyRequests(w, r)
		return
	}

	var req devLoginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "dev login: bad body", err, "Invalid sign-in request.")
		return
	}
	req.ID = strings.TrimSpace(req.ID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, known := h.Svc.User(req.ID)
	u, err := h.Svc.SignIn(ctx, scheduling.Identity{
		ID:          req.ID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	notice := uierrors.PersistenceNotice(err)
	if err != nil && notice == nil {
		h.AuditLog.LoginFailed(ctx, r, "dev", scheduling.CodeOf(err))
		h.ErrLog.LogScheduling(w, r, "dev login failed", err)
		return
	}
	if !known {
		h.AuditLog.UserCreated(ctx, r, u.ID, u.IsAdmin)
	}

	email := ""
	if u.Email != nil {
		email = *u.Email
	}
	if err := h.SessionMgr.Establish(w, r, auth.SessionUser{
		ID:      u.ID,
		Name:    u.FullName(),
		Email:   email,
		IsAdmin: u.IsAdmin,
	}, "dev"); err != nil {
		h.ErrLog.LogServerError(w, r, "dev login: save session", err, "Could not start a session.")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, "dev")
	h.Log.Info("user logged in via dev login", zap.String("user_id", u.ID))

	httpjson.Write(w, http.StatusOK, devLoginResponse{
		UserID:   u.ID,
		Name:     u.FullName(),
		IsAdmin:  u.IsAdmin,
		Redirect: urlutil.SafeReturn(req.Return, "", "/dashboard"),
		Notice:   notice,
	})
}

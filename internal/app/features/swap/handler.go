// internal/app/features/swap/handler.go
package swap

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/guardduty/internal/app/features/errors"
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
	"github.com/dalemusser/guardduty/internal/app/system/ratelimit"
	"github.com/dalemusser/guardduty/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Svc      *scheduling.Service
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Limiter  *ratelimit.Limiter
}

func NewHandler(svc *scheduling.Service, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Limiter:  limiter,
	}
}

// ServeCode handles GET /swap: the signed-in user's own secret code, to be
// handed to a colleague out of band.
func (h *Handler) ServeCode(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	code, err := h.Svc.SecretCode(su.ID)
	if err != nil {
		h.ErrLog.LogScheduling(w, r, "swap: read own code", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"secret_code": code})
}

type swapRequest struct {
	Code string `json:"code"`
}

type swapResponse struct {
	scheduling.SwapResult
	Notice *uierrors.Notice `json:"notice,omitempty"`
}

// HandleSwap handles POST /swap. Attempts are limited per user so codes
// cannot be guessed by brute force.
func (h *Handler) HandleSwap(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	if h.Limiter != nil && !h.Limiter.Allow(su.ID) {
		h.Log.Warn("swap rate limit hit", zap.String("user_id", su.ID))
		h.AuditLog.SwapFailed(r.Context(), r, su.ID, "rate_limited")
		uierrors.RenderTooManyRequests(w, r)
		return
	}

	var req swapRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "swap: bad body", err, "Send the other user's secret code.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Svc.Swap(ctx, su.ID, req.Code)
	notice := uierrors.PersistenceNotice(err)
	if err != nil && notice == nil {
		h.AuditLog.SwapFailed(ctx, r, su.ID, scheduling.CodeOf(err))
		h.ErrLog.LogScheduling(w, r, "swap refused", err)
		return
	}

	h.AuditLog.SwapCompleted(ctx, r, su.ID, res.Peer.ID, res.Given, res.Received)
	httpjson.Write(w, http.StatusOK, swapResponse{SwapResult: res, Notice: notice})
}

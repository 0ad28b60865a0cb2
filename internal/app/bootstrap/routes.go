// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/guardduty/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/guardduty/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/guardduty/internal/app/features/authgoogle"
	calendarfeature "github.com/dalemusser/guardduty/internal/app/features/calendar"
	dashboardfeature "github.com/dalemusser/guardduty/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/guardduty/internal/app/features/errors"
	exportfeature "github.com/dalemusser/guardduty/internal/app/features/export"
	healthfeature "github.com/dalemusser/guardduty/internal/app/features/health"
	loginfeature "github.com/dalemusser/guardduty/internal/app/features/login"
	logoutfeature "github.com/dalemusser/guardduty/internal/app/features/logout"
	swapfeature "github.com/dalemusser/guardduty/internal/app/features/swap"
	"github.com/dalemusser/guardduty/internal/app/store/audit"
	"github.com/dalemusser/guardduty/internal/app/store/oauthstate"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/dalemusser/guardduty/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed, so the scheduling service is already hydrated.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetUserFetcher(directoryFetcher{svc: deps.Scheduling})

	return newRouter(appCfg, deps, sessionMgr, logger), nil
}

func newRouter(appCfg AppConfig, deps DBDeps, sessionMgr *auth.SessionManager, logger *zap.Logger) chi.Router {
	svc := deps.Scheduling
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Loads the SessionUser into context for every request.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, svc, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	// Authentication
	loginLimiter := ratelimit.PerMinute(appCfg.LoginRatePerMinute, appCfg.LoginRatePerMinute)
	loginHandler := loginfeature.NewHandler(svc, sessionMgr, errLog, deps.Audit, loginLimiter,
		appCfg.GoogleEnabled(), appCfg.DevLogin, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	if appCfg.GoogleEnabled() {
		googleHandler := authgooglefeature.NewHandler(svc, sessionMgr, deps.Audit,
			oauthstate.New(deps.MongoDatabase),
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	logoutHandler := logoutfeature.NewHandler(sessionMgr, deps.Audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Signed-in views
	dashboardHandler := dashboardfeature.NewHandler(svc, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	calendarHandler := calendarfeature.NewHandler(svc, errLog, deps.Audit, logger)
	r.Mount("/calendar", calendarfeature.Routes(calendarHandler, sessionMgr))

	swapLimiter := ratelimit.PerMinute(appCfg.SwapRatePerMinute, appCfg.SwapRatePerMinute)
	swapHandler := swapfeature.NewHandler(svc, errLog, deps.Audit, swapLimiter, logger)
	r.Mount("/swap", swapfeature.Routes(swapHandler, sessionMgr))

	exportHandler := exportfeature.NewHandler(svc, errLog, deps.Audit, logger)
	r.Mount("/export.csv", exportfeature.Routes(exportHandler, sessionMgr))

	// Admin
	adminHandler := adminfeature.NewHandler(svc, errLog, deps.Audit, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

	if deps.MongoDatabase != nil {
		auditHandler := auditlogfeature.NewHandler(audit.New(deps.MongoDatabase), svc, errLog, logger)
		r.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.RenderNotFound(w, r, "No such page.")
	})

	return r
}

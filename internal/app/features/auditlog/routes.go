// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /admin/audit and is limited to admins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireAdmin)
		pr.Get("/", h.ServeList)
	})

	return r
}

// internal/app/features/export/routes.go
package export

import (
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /export.csv.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeCSV)
	})

	return r
}

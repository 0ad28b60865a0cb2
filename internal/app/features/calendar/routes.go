// internal/app/features/calendar/routes.go
package calendar

import (
	"github.com/dalemusser/guardduty/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /calendar. Every route needs a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeMonth)
		pr.Get("/days/{date}", h.ServeDay)
		pr.Post("/validate", h.HandleValidate)
		pr.Post("/reservations", h.HandleCommit)
	})

	return r
}

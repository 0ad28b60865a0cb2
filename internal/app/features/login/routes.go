// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	if h.DevEnabled {
		r.Post("/dev", h.HandleDevLogin)
	}
	return r
}

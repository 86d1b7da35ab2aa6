// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the profile router, mounted at /profile.
// Handlers gate on the session themselves.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeProfile)
	r.Post("/username", h.HandleUsername)
	r.Post("/role", h.HandleRole)
	return r
}

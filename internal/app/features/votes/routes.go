// internal/app/features/votes/routes.go
package votes

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the votes router, mounted at /votes.
// Handlers gate on the session themselves.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCast)
	return r
}

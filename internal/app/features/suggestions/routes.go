// internal/app/features/suggestions/routes.go
package suggestions

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the suggestions router, mounted at /suggestions.
// Handlers gate on the session themselves.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSubmit)
	r.Post("/{suggestionID}/withdraw", h.HandleWithdraw)
	return r
}

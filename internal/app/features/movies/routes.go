// internal/app/features/movies/routes.go
package movies

import (
	"github.com/go-chi/chi/v5"

	"github.com/cinevote/cinevote/internal/app/system/auth"
)

// Routes returns the movies router, mounted at /movies. Browsing requires
// sign-in; the catalog exists to feed suggestions.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServePopular)
	r.Get("/search", h.ServeSearch)
	r.Get("/genre/{genreID}", h.ServeGenre)
	r.Get("/{tmdbID}", h.ServeDetail)
	return r
}

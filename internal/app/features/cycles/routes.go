// internal/app/features/cycles/routes.go
package cycles

import (
	"github.com/go-chi/chi/v5"

	"github.com/cinevote/cinevote/internal/app/system/auth"
	"github.com/cinevote/cinevote/internal/domain/models"
)

// Routes returns the cycles router, mounted at /cycles. Viewing is open
// to any signed-in user; managing cycles is admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{cycleID}", h.ServeDetail)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(models.RoleAdmin))
		r.Get("/new", h.ServeNew)
		r.Post("/", h.HandleCreate)
		r.Get("/{cycleID}/edit", h.ServeEdit)
		r.Post("/{cycleID}/edit", h.HandleUpdate)
		r.Post("/{cycleID}/delete", h.HandleDelete)
		r.Post("/{cycleID}/finalize", h.HandleFinalize)
	})

	return r
}

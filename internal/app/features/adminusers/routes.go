// internal/app/features/adminusers/routes.go
package adminusers

import (
	"github.com/go-chi/chi/v5"

	"github.com/cinevote/cinevote/internal/app/system/auth"
	"github.com/cinevote/cinevote/internal/domain/models"
)

// Routes returns the member admin router, mounted at /admin/users.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	r.Post("/{profileID}/role", h.HandleRole)
	return r
}

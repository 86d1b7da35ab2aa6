// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes registers the login and signup pages on the parent router;
// both live at the top level of the site.
func Routes(r chi.Router, h *Handler) {
	r.Get("/login", h.ServeLogin)
	r.Post("/login", h.HandleLoginPost)
	r.Get("/signup", h.ServeSignup)
	r.Post("/signup", h.HandleSignupPost)
}

// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"

	"github.com/cinevote/cinevote/internal/app/system/auth"
)

func renderWithUser(w http.ResponseWriter, r *http.Request, data *pageData) {
	if u, signed := auth.CurrentUser(r); signed && u != nil {
		data.IsLoggedIn = true
		data.Role = u.Role
		data.UserName = u.Username
	}
	data.CSRFToken = csrf.Token(r)
	templates.Render(w, r, "error_page", *data)
}

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it defaults to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	renderWithUser(w, r, &pageData{
		Title:   "Sign in required",
		Message: "Please sign in to continue.",
		BackURL: backURL,
	})
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderWithUser(w, r, &pageData{
		Title:   "Access denied",
		Message: msg,
		BackURL: backURL,
	})
}

// RenderNotFound shows a friendly "not found" page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	if msg == "" {
		msg = "The page you're looking for doesn't exist."
	}
	w.WriteHeader(http.StatusNotFound)
	renderWithUser(w, r, &pageData{
		Title:   "Page not found",
		Message: msg,
		BackURL: backURL,
	})
}

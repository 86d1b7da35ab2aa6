// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cinevote/cinevote/internal/app/system/auth"
)

// Handler clears the session and sends the user home.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler constructs a logout Handler.
func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sessionMgr, Log: logger}
}

// Serve handles POST /logout.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.Clear(w, r); err != nil {
		// The cookie may already be gone; sign-out still succeeds.
		h.Log.Warn("clearing session failed", zap.Error(err))
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering the appropriate
// error page when a check fails.
//
// Route groups that already carry auth middleware (sm.RequireSignedIn,
// sm.RequireRole) don't need gates in their handlers; use authz.UserCtx
// there to read the user context without re-checking. Gates are for
// handlers on mixed-access routes that need their own check.
package gates

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	"github.com/cinevote/cinevote/internal/app/system/authz"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role     string
	Username string
	UserID   primitive.ObjectID
	OK       bool
}

// RequireAuth ensures a user is authenticated. If not, it renders an
// unauthorized error and returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Role: role, Username: name, UserID: uid, OK: true}
}

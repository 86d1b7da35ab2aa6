// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinevote/cinevote/internal/app/system/auth"
)

// UserCtx returns the user's role (lowercased), username, Mongo ObjectID,
// and a found flag. If no user is present in context or the user ID claim
// is malformed, it returns "visitor", "", NilObjectID, false so callers can
// trust that ok=true means a valid, authenticated user.
func UserCtx(r *http.Request) (role string, username string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed id claim; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Username, userID, true
}

// IsAdmin reports whether the current request's user holds the admin claim.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsSignedIn reports whether any authenticated user is present in context.
func IsSignedIn(r *http.Request) bool {
	_, ok := auth.CurrentUser(r)
	return ok
}

// HasAnyRole reports whether the current user's role claim is one of the
// given roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(want) {
			return true
		}
	}
	return false
}

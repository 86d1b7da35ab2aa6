package testutil

import (
	"net/http"
	"net/http/httptest"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinevote/cinevote/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// AdminUser returns a TestUser with the admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Username: "testadmin",
		Email:    "admin@test.com",
		Role:     "admin",
	}
}

// RegularUser returns a TestUser with the user role.
func RegularUser() TestUser {
	return TestUser{
		ID:       primitive.NewObjectID().Hex(),
		Username: "testuser",
		Email:    "user@test.com",
		Role:     "user",
	}
}

// WithUser adds a user to the request context, bypassing the session
// middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

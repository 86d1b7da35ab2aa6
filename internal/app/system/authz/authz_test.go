package authz_test

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinevote/cinevote/internal/app/system/auth"
	"github.com/cinevote/cinevote/internal/app/system/authz"
)

func TestUserCtx_Anonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	role, name, uid, ok := authz.UserCtx(r)
	if ok {
		t.Fatal("ok=true for anonymous request")
	}
	if role != "visitor" || name != "" || uid != primitive.NilObjectID {
		t.Errorf("got role=%q name=%q uid=%v", role, name, uid)
	}
}

func TestUserCtx_ValidUser(t *testing.T) {
	oid := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{
		ID: oid.Hex(), Username: "alice", Role: "Admin",
	})

	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		t.Fatal("ok=false for valid user")
	}
	if role != "admin" {
		t.Errorf("role = %q, want lowercased admin", role)
	}
	if name != "alice" || uid != oid {
		t.Errorf("name=%q uid=%v", name, uid)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "not-an-objectid", Role: "admin"})

	if _, _, _, ok := authz.UserCtx(r); ok {
		t.Error("malformed id claim should fail closed")
	}
}

func TestIsAdmin(t *testing.T) {
	oid := primitive.NewObjectID()

	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: oid.Hex(), Role: "admin"})
	if !authz.IsAdmin(r) {
		t.Error("admin claim not recognized")
	}

	r = httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: oid.Hex(), Role: "user"})
	if authz.IsAdmin(r) {
		t.Error("user claim treated as admin")
	}
}

func TestHasAnyRole(t *testing.T) {
	oid := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: oid.Hex(), Role: "user"})

	if !authz.HasAnyRole(r, "admin", "user") {
		t.Error("user role should match the allowed set")
	}
	if authz.HasAnyRole(r, "admin") {
		t.Error("user role should not match admin-only set")
	}
}

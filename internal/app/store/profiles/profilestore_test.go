package profilestore_test

import (
	"errors"
	"testing"

	profilestore "github.com/cinevote/cinevote/internal/app/store/profiles"
	"github.com/cinevote/cinevote/internal/app/system/indexes"
	"github.com/cinevote/cinevote/internal/domain/models"
	"github.com/cinevote/cinevote/internal/testutil"
)

func TestCreate_NormalizesAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	store := profilestore.New(db)
	p, err := store.Create(ctx, models.Profile{
		Email: "  Alice@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Email != "alice@example.com" {
		t.Errorf("email = %q", p.Email)
	}
	if p.Username != "alice" {
		t.Errorf("username = %q, want email local part", p.Username)
	}
	if p.Role != models.RoleUser {
		t.Errorf("role = %q, want default user", p.Role)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	store := profilestore.New(db)
	if _, err := store.Create(ctx, models.Profile{Email: "dup@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := store.Create(ctx, models.Profile{Email: "DUP@example.com"})
	if !errors.Is(err, profilestore.ErrDuplicateEmail) {
		t.Errorf("duplicate create error = %v, want ErrDuplicateEmail", err)
	}
}

func TestEnsureProfile_LazyProvisioning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	store := profilestore.New(db)

	// First OAuth login creates the profile.
	p, err := store.EnsureProfile(ctx, "carol@example.com", "google-sub-1")
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if p.Username != "carol" {
		t.Errorf("username = %q, want carol", p.Username)
	}
	if p.AuthMethod != "google" || p.GoogleID != "google-sub-1" {
		t.Errorf("auth fields = %q/%q", p.AuthMethod, p.GoogleID)
	}

	// Second login returns the same profile.
	again, err := store.EnsureProfile(ctx, "carol@example.com", "google-sub-1")
	if err != nil {
		t.Fatalf("second EnsureProfile: %v", err)
	}
	if again.ID != p.ID {
		t.Error("second login created a new profile")
	}
}

func TestEnsureProfile_LinksGoogleToPasswordAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	store := profilestore.New(db)
	created, err := store.Create(ctx, models.Profile{
		Email:        "dave@example.com",
		Username:     "dave",
		PasswordHash: "x",
		AuthMethod:   "password",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	linked, err := store.EnsureProfile(ctx, "dave@example.com", "google-sub-2")
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if linked.ID != created.ID {
		t.Fatal("OAuth login created a second profile for the same email")
	}
	if linked.GoogleID != "google-sub-2" {
		t.Errorf("google id = %q, want linked subject", linked.GoogleID)
	}
}

func TestUpdateRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	fx := testutil.NewFixtures(t, db)
	p := fx.CreateProfile(ctx, "erin", "user")

	store := profilestore.New(db)
	if err := store.UpdateRole(ctx, p.ID, "admin"); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", got.Role)
	}

	// Unknown roles are rejected, not silently stored.
	if err := store.UpdateRole(ctx, p.ID, "superuser"); err == nil {
		t.Error("UpdateRole accepted an invalid role")
	}
}

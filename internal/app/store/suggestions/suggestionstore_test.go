package suggestionstore_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	suggestionstore "github.com/cinevote/cinevote/internal/app/store/suggestions"
	"github.com/cinevote/cinevote/internal/app/system/indexes"
	"github.com/cinevote/cinevote/internal/domain/models"
	"github.com/cinevote/cinevote/internal/testutil"
)

func TestCreate_DedupPerUserPerCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	cycle := fx.CreateCycle(ctx, "Week 1", now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	alice := fx.CreateProfile(ctx, "alice", "user")
	bob := fx.CreateProfile(ctx, "bob", "user")

	store := suggestionstore.New(db)

	first, err := store.Create(ctx, models.Suggestion{
		CycleID:       cycle.ID,
		SubmittedByID: alice.ID,
		MovieTitle:    "Alien",
		TMDBID:        348,
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.ID.IsZero() {
		t.Error("created suggestion has zero id")
	}

	// Same user, same movie, same cycle: rejected.
	_, err = store.Create(ctx, models.Suggestion{
		CycleID:       cycle.ID,
		SubmittedByID: alice.ID,
		MovieTitle:    "Alien",
		TMDBID:        348,
	})
	if !errors.Is(err, suggestionstore.ErrDuplicateSuggestion) {
		t.Errorf("duplicate create error = %v, want ErrDuplicateSuggestion", err)
	}

	// Different user, same movie: allowed.
	if _, err := store.Create(ctx, models.Suggestion{
		CycleID:       cycle.ID,
		SubmittedByID: bob.ID,
		MovieTitle:    "Alien",
		TMDBID:        348,
	}); err != nil {
		t.Errorf("other user same movie: %v", err)
	}

	// Same user, different movie: allowed.
	if _, err := store.Create(ctx, models.Suggestion{
		CycleID:       cycle.ID,
		SubmittedByID: alice.ID,
		MovieTitle:    "Aliens",
		TMDBID:        679,
	}); err != nil {
		t.Errorf("same user different movie: %v", err)
	}
}

func TestListByCycle_SubmissionOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	cycle := fx.CreateCycle(ctx, "Week 2", now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	alice := fx.CreateProfile(ctx, "alice", "user")

	store := suggestionstore.New(db)
	titles := []string{"First", "Second", "Third"}
	for i, title := range titles {
		if _, err := store.Create(ctx, models.Suggestion{
			CycleID:       cycle.ID,
			SubmittedByID: alice.ID,
			MovieTitle:    title,
			TMDBID:        int64(1000 + i),
			SubmittedAt:   now.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
	}

	got, err := store.ListByCycle(ctx, cycle.ID)
	if err != nil {
		t.Fatalf("ListByCycle: %v", err)
	}
	if len(got) != len(titles) {
		t.Fatalf("got %d suggestions, want %d", len(got), len(titles))
	}
	for i, sg := range got {
		if sg.MovieTitle != titles[i] {
			t.Errorf("position %d = %q, want %q", i, sg.MovieTitle, titles[i])
		}
	}
}

func TestDeleteOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	cycle := fx.CreateCycle(ctx, "Week 3", now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	alice := fx.CreateProfile(ctx, "alice", "user")
	bob := fx.CreateProfile(ctx, "bob", "user")
	sg := fx.CreateSuggestion(ctx, cycle.ID, alice.ID, "Heat", 949)

	store := suggestionstore.New(db)

	// Bob cannot withdraw Alice's suggestion.
	if err := store.DeleteOwned(ctx, sg.ID, bob.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("non-owner delete error = %v, want ErrNoDocuments", err)
	}
	if _, err := store.GetByID(ctx, sg.ID); err != nil {
		t.Fatalf("suggestion should still exist: %v", err)
	}

	// Alice can.
	if err := store.DeleteOwned(ctx, sg.ID, alice.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := store.GetByID(ctx, sg.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("after delete, GetByID error = %v, want ErrNoDocuments", err)
	}
}

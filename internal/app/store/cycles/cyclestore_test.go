package cyclestore_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	cyclestore "github.com/cinevote/cinevote/internal/app/store/cycles"
	"github.com/cinevote/cinevote/internal/domain/models"
	"github.com/cinevote/cinevote/internal/testutil"
)

func TestCreate_RejectsBadWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	store := cyclestore.New(db)
	now := time.Now().UTC()

	_, err := store.Create(ctx, models.VotingCycle{
		Name:            "Backwards",
		SuggestionStart: now.Add(2 * time.Hour),
		VotingStart:     now.Add(time.Hour),
		VotingEnd:       now.Add(3 * time.Hour),
	})
	if !errors.Is(err, models.ErrBadCycleWindow) {
		t.Errorf("create error = %v, want ErrBadCycleWindow", err)
	}
}

func TestActiveSuggestionCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()

	// Ended, active, and future cycles.
	fx.CreateCycle(ctx, "Past", now.Add(-4*time.Hour), now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	active := fx.CreateCycle(ctx, "Active", now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	fx.CreateCycle(ctx, "Future", now.Add(3*time.Hour), now.Add(4*time.Hour), now.Add(5*time.Hour))

	store := cyclestore.New(db)

	got, err := store.ActiveSuggestionCycle(ctx, now)
	if err != nil {
		t.Fatalf("ActiveSuggestionCycle: %v", err)
	}
	if got.ID != active.ID {
		t.Errorf("active cycle = %q, want %q", got.Name, active.Name)
	}

	// At a time when nothing is open for suggestions.
	_, err = store.ActiveSuggestionCycle(ctx, now.Add(90*time.Minute))
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("no-active error = %v, want ErrNoDocuments", err)
	}
}

func TestList_OrderedByVotingEnd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	fx.CreateCycle(ctx, "Later", now.Add(time.Hour), now.Add(2*time.Hour), now.Add(10*time.Hour))
	fx.CreateCycle(ctx, "Sooner", now.Add(time.Hour), now.Add(2*time.Hour), now.Add(5*time.Hour))

	store := cyclestore.New(db)
	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d cycles, want 2", len(got))
	}
	if got[0].Name != "Sooner" || got[1].Name != "Later" {
		t.Errorf("order = [%q, %q], want [Sooner, Later]", got[0].Name, got[1].Name)
	}
}

func TestSetWinner_OnceOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	cycle := fx.CreateCycle(ctx, "Done", now.Add(-3*time.Hour), now.Add(-2*time.Hour), now.Add(-time.Hour))
	alice := fx.CreateProfile(ctx, "alice", "user")
	sg := fx.CreateSuggestion(ctx, cycle.ID, alice.ID, "Alien", 348)
	other := fx.CreateSuggestion(ctx, cycle.ID, alice.ID, "Heat", 949)

	store := cyclestore.New(db)

	if err := store.SetWinner(ctx, cycle.ID, sg.ID); err != nil {
		t.Fatalf("SetWinner: %v", err)
	}

	got, err := store.GetByID(ctx, cycle.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.WinnerID == nil || *got.WinnerID != sg.ID {
		t.Fatalf("winner = %v, want %s", got.WinnerID, sg.ID.Hex())
	}

	// A second finalize must not overwrite the recorded winner.
	if err := store.SetWinner(ctx, cycle.ID, other.ID); !errors.Is(err, cyclestore.ErrCycleFinalized) {
		t.Errorf("second SetWinner error = %v, want ErrCycleFinalized", err)
	}

	// Finalized cycles reject edits.
	err = store.Update(ctx, cycle.ID, models.VotingCycle{
		Name:            "Renamed",
		SuggestionStart: cycle.SuggestionStart,
		VotingStart:     cycle.VotingStart,
		VotingEnd:       cycle.VotingEnd,
	})
	if !errors.Is(err, cyclestore.ErrCycleFinalized) {
		t.Errorf("update after finalize error = %v, want ErrCycleFinalized", err)
	}
}

func TestSetWinner_MissingCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	store := cyclestore.New(db)
	err := store.SetWinner(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("error = %v, want ErrNoDocuments", err)
	}
}

package votestore_test

import (
	"errors"
	"testing"
	"time"

	votestore "github.com/cinevote/cinevote/internal/app/store/votes"
	"github.com/cinevote/cinevote/internal/app/system/indexes"
	"github.com/cinevote/cinevote/internal/domain/models"
	"github.com/cinevote/cinevote/internal/testutil"
)

func TestCast_OneVotePerCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	cycle := fx.CreateCycle(ctx, "Week 1", now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	other := fx.CreateCycle(ctx, "Week 2", now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	alice := fx.CreateProfile(ctx, "alice", "user")
	bob := fx.CreateProfile(ctx, "bob", "user")
	sgA := fx.CreateSuggestion(ctx, cycle.ID, alice.ID, "Alien", 348)
	sgB := fx.CreateSuggestion(ctx, cycle.ID, bob.ID, "Heat", 949)

	store := votestore.New(db)

	if _, err := store.Cast(ctx, models.Vote{
		CycleID: cycle.ID, SuggestionID: sgA.ID, VoterID: alice.ID,
	}); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	// Second vote by the same voter in the same cycle is rejected, even for
	// a different suggestion.
	_, err := store.Cast(ctx, models.Vote{
		CycleID: cycle.ID, SuggestionID: sgB.ID, VoterID: alice.ID,
	})
	if !errors.Is(err, votestore.ErrAlreadyVoted) {
		t.Errorf("second vote error = %v, want ErrAlreadyVoted", err)
	}

	// The same voter can still vote in a different cycle.
	if _, err := store.Cast(ctx, models.Vote{
		CycleID: other.ID, SuggestionID: sgA.ID, VoterID: alice.ID,
	}); err != nil {
		t.Errorf("vote in other cycle: %v", err)
	}
}

func TestCountsByCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	cycle := fx.CreateCycle(ctx, "Week 1", now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	alice := fx.CreateProfile(ctx, "alice", "user")
	bob := fx.CreateProfile(ctx, "bob", "user")
	carol := fx.CreateProfile(ctx, "carol", "user")
	sgA := fx.CreateSuggestion(ctx, cycle.ID, alice.ID, "Alien", 348)
	sgB := fx.CreateSuggestion(ctx, cycle.ID, bob.ID, "Heat", 949)

	fx.CreateVote(ctx, cycle.ID, sgA.ID, alice.ID)
	fx.CreateVote(ctx, cycle.ID, sgA.ID, bob.ID)
	fx.CreateVote(ctx, cycle.ID, sgB.ID, carol.ID)

	store := votestore.New(db)
	counts, err := store.CountsByCycle(ctx, cycle.ID)
	if err != nil {
		t.Fatalf("CountsByCycle: %v", err)
	}
	if counts[sgA.ID] != 2 {
		t.Errorf("suggestion A count = %d, want 2", counts[sgA.ID])
	}
	if counts[sgB.ID] != 1 {
		t.Errorf("suggestion B count = %d, want 1", counts[sgB.ID])
	}

	total, err := store.TotalByCycle(ctx, cycle.ID)
	if err != nil {
		t.Fatalf("TotalByCycle: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

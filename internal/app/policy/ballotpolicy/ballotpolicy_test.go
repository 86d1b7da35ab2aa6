package ballotpolicy

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinevote/cinevote/internal/domain/models"
)

func testCycle() *models.VotingCycle {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.VotingCycle{
		ID:              primitive.NewObjectID(),
		Name:            "March movie night",
		SuggestionStart: base,
		VotingStart:     base.Add(48 * time.Hour),
		VotingEnd:       base.Add(96 * time.Hour),
	}
}

func TestCanSubmit_OnlyDuringSuggestionWindow(t *testing.T) {
	c := testCycle()

	if CanSubmit(c, c.SuggestionStart.Add(-time.Minute)) {
		t.Error("submit allowed before suggestion window")
	}
	if !CanSubmit(c, c.SuggestionStart) {
		t.Error("submit rejected at suggestion start")
	}
	if !CanSubmit(c, c.VotingStart.Add(-time.Second)) {
		t.Error("submit rejected just before voting opens")
	}
	if CanSubmit(c, c.VotingStart) {
		t.Error("submit allowed once voting opened")
	}
}

func TestCanWithdraw_FrozenOnceVotingOpens(t *testing.T) {
	c := testCycle()

	if !CanWithdraw(c, c.SuggestionStart.Add(time.Hour)) {
		t.Error("withdraw rejected during suggestion window")
	}
	if CanWithdraw(c, c.VotingStart) {
		t.Error("withdraw allowed after ballot froze")
	}
}

func TestCanVote_OnlyDuringVotingWindow(t *testing.T) {
	c := testCycle()

	if CanVote(c, c.VotingStart.Add(-time.Second)) {
		t.Error("vote allowed before voting opened")
	}
	if !CanVote(c, c.VotingStart) {
		t.Error("vote rejected at voting start")
	}
	if CanVote(c, c.VotingEnd) {
		t.Error("vote allowed at voting end")
	}
}

func TestCanFinalize(t *testing.T) {
	c := testCycle()

	if CanFinalize(c, c.VotingEnd.Add(-time.Second)) {
		t.Error("finalize allowed before voting ended")
	}
	if !CanFinalize(c, c.VotingEnd) {
		t.Error("finalize rejected once voting ended")
	}

	winner := primitive.NewObjectID()
	c.WinnerID = &winner
	if CanFinalize(c, c.VotingEnd.Add(time.Hour)) {
		t.Error("finalize allowed on already finalized cycle")
	}
}

func TestCanEdit_FinalizedCycleIsImmutable(t *testing.T) {
	c := testCycle()
	if !CanEdit(c) {
		t.Error("edit rejected on open cycle")
	}

	winner := primitive.NewObjectID()
	c.WinnerID = &winner
	if CanEdit(c) {
		t.Error("edit allowed on finalized cycle")
	}
}

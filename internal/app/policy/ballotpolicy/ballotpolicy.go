// internal/app/policy/ballotpolicy/ballotpolicy.go
package ballotpolicy

import (
	"time"

	"github.com/cinevote/cinevote/internal/domain/models"
)

// Ballot rules live here so the suggestion, vote, and cycle handlers all
// gate on the same clock logic. Every decision is made against the
// cycle's phase at the moment of the request, never at page-load time.

// CanSubmit reports whether a new suggestion may join the cycle's ballot at t.
func CanSubmit(c *models.VotingCycle, t time.Time) bool {
	return c.PhaseAt(t) == models.PhaseSuggestion
}

// CanWithdraw reports whether a suggestion may leave the ballot at t.
// Once voting opens the ballot is frozen, including for the owner.
func CanWithdraw(c *models.VotingCycle, t time.Time) bool {
	return c.PhaseAt(t) == models.PhaseSuggestion
}

// CanVote reports whether votes are being accepted for the cycle at t.
func CanVote(c *models.VotingCycle, t time.Time) bool {
	return c.PhaseAt(t) == models.PhaseVoting
}

// CanFinalize reports whether a winner may be recorded for the cycle at t.
// Requires voting to be over and no winner recorded yet.
func CanFinalize(c *models.VotingCycle, t time.Time) bool {
	return c.WinnerID == nil && c.PhaseAt(t) == models.PhaseEnded
}

// CanEdit reports whether the cycle's window or name may still change.
// Finalized cycles are immutable.
func CanEdit(c *models.VotingCycle) bool {
	return c.WinnerID == nil
}

// internal/domain/models/cycle.go
package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phase is the derived lifecycle state of a voting cycle. It is never
// stored; it is a pure function of the cycle's three timestamps and the
// current time.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseSuggestion Phase = "suggestion"
	PhaseVoting     Phase = "voting"
	PhaseEnded      Phase = "ended"
)

// Label returns the phase name as shown in the UI.
func (p Phase) Label() string {
	switch p {
	case PhaseNotStarted:
		return "Not Started"
	case PhaseSuggestion:
		return "Suggestion Phase"
	case PhaseVoting:
		return "Voting Phase"
	case PhaseEnded:
		return "Ended"
	}
	return string(p)
}

// ErrBadCycleWindow is returned by Validate when the three timestamps are
// not strictly increasing.
var ErrBadCycleWindow = errors.New("cycle timestamps must satisfy suggestionStart < votingStart < votingEnd")

// VotingCycle is one recurring round of movie selection: a suggestion
// window followed by a voting window. WinnerID is set once, after the
// cycle has ended, by an admin finalizing the tally.
type VotingCycle struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name            string              `bson:"name" json:"name"`
	SuggestionStart time.Time           `bson:"suggestion_start" json:"suggestion_start"`
	VotingStart     time.Time           `bson:"voting_start" json:"voting_start"`
	VotingEnd       time.Time           `bson:"voting_end" json:"voting_end"`
	WinnerID        *primitive.ObjectID `bson:"winner_id,omitempty" json:"winner_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PhaseAt derives the cycle's phase at the given instant.
//
// Each window is left-inclusive and right-exclusive, so the four phases
// partition the timeline: a cycle is in its suggestion phase at exactly
// suggestionStart, in its voting phase at exactly votingStart, and ended
// at exactly votingEnd.
func (c *VotingCycle) PhaseAt(now time.Time) Phase {
	switch {
	case now.Before(c.SuggestionStart):
		return PhaseNotStarted
	case now.Before(c.VotingStart):
		return PhaseSuggestion
	case now.Before(c.VotingEnd):
		return PhaseVoting
	default:
		return PhaseEnded
	}
}

// Validate checks the window ordering invariant. Cycles with out-of-order
// timestamps would produce windows of negative length that are never
// entered, so creation and edits reject them outright.
func (c *VotingCycle) Validate() error {
	if !c.SuggestionStart.Before(c.VotingStart) || !c.VotingStart.Before(c.VotingEnd) {
		return ErrBadCycleWindow
	}
	return nil
}

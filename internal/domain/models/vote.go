// internal/domain/models/vote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote links a voter to one suggestion within one cycle. A voter casts at
// most one vote per cycle, enforced by a unique index on (cycle_id, voter_id).
type Vote struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CycleID      primitive.ObjectID `bson:"cycle_id" json:"cycle_id"`
	SuggestionID primitive.ObjectID `bson:"suggestion_id" json:"suggestion_id"`
	VoterID      primitive.ObjectID `bson:"voter_id" json:"voter_id"`
	VotedAt      time.Time          `bson:"voted_at" json:"voted_at"`
}

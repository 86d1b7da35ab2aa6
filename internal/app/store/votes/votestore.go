package votestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinevote/cinevote/internal/domain/models"
)

// ErrAlreadyVoted is returned when a user casts a second vote in the same
// cycle. The unique index on (cycle_id, voter_id) enforces this; two
// concurrent casts cannot both land.
var ErrAlreadyVoted = errors.New("you have already voted in this cycle")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("votes")}
}

// Cast records a vote. The handler has already verified the cycle is in
// its voting phase and the suggestion belongs to the cycle.
func (s *Store) Cast(ctx context.Context, v models.Vote) (models.Vote, error) {
	v.ID = primitive.NewObjectID()
	if v.VotedAt.IsZero() {
		v.VotedAt = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Vote{}, ErrAlreadyVoted
		}
		return models.Vote{}, err
	}
	return v, nil
}

// GetByVoter returns the voter's vote in a cycle, or mongo.ErrNoDocuments.
func (s *Store) GetByVoter(ctx context.Context, cycleID, voterID primitive.ObjectID) (*models.Vote, error) {
	var v models.Vote
	if err := s.c.FindOne(ctx, bson.M{"cycle_id": cycleID, "voter_id": voterID}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CountsByCycle tallies votes per suggestion for one cycle.
func (s *Store) CountsByCycle(ctx context.Context, cycleID primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"cycle_id": cycleID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$suggestion_id",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := map[primitive.ObjectID]int64{}
	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Count int64              `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

// TotalByCycle returns the number of votes cast in a cycle.
func (s *Store) TotalByCycle(ctx context.Context, cycleID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"cycle_id": cycleID})
}

// DeleteByCycle removes all votes for a cycle. Used when an admin deletes
// the cycle itself.
func (s *Store) DeleteByCycle(ctx context.Context, cycleID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"cycle_id": cycleID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteBySuggestion removes votes pointing at a withdrawn suggestion.
func (s *Store) DeleteBySuggestion(ctx context.Context, suggestionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"suggestion_id": suggestionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

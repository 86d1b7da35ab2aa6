package cyclestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinevote/cinevote/internal/domain/models"
)

// ErrCycleFinalized is returned when mutating a cycle whose winner has
// already been recorded.
var ErrCycleFinalized = errors.New("cycle has already been finalized")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("voting_cycles")}
}

// GetByID loads a cycle by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.VotingCycle, error) {
	var c models.VotingCycle
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new cycle after validating its window ordering.
func (s *Store) Create(ctx context.Context, c models.VotingCycle) (models.VotingCycle, error) {
	if err := c.Validate(); err != nil {
		return models.VotingCycle{}, err
	}
	c.ID = primitive.NewObjectID()
	c.WinnerID = nil

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.VotingCycle{}, err
	}
	return c, nil
}

// Update rewrites a cycle's name and window after validating the ordering.
// Finalized cycles are immutable.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, c models.VotingCycle) error {
	if err := c.Validate(); err != nil {
		return err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.WinnerID != nil {
		return ErrCycleFinalized
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":             c.Name,
		"suggestion_start": c.SuggestionStart,
		"voting_start":     c.VotingStart,
		"voting_end":       c.VotingEnd,
		"updated_at":       time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a cycle. The caller deletes dependent suggestions and
// votes first; this store does not cascade.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns all cycles ordered by voting end, soonest first.
func (s *Store) List(ctx context.Context) ([]models.VotingCycle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "voting_end", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.VotingCycle
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveSuggestionCycle returns the cycle currently accepting suggestions
// at the given instant: suggestion_start <= now < voting_start. If several
// overlap, the one that started most recently wins. Returns
// mongo.ErrNoDocuments when no cycle is in its suggestion window.
func (s *Store) ActiveSuggestionCycle(ctx context.Context, now time.Time) (*models.VotingCycle, error) {
	filter := bson.M{
		"suggestion_start": bson.M{"$lte": now},
		"voting_start":     bson.M{"$gt": now},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "suggestion_start", Value: -1}})

	var c models.VotingCycle
	if err := s.c.FindOne(ctx, filter, opts).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetWinner records the winning suggestion for an ended cycle. It only
// writes if no winner is recorded yet, so finalizing is idempotent-safe
// under concurrent admins.
func (s *Store) SetWinner(ctx context.Context, cycleID, suggestionID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": cycleID, "winner_id": nil},
		bson.M{"$set": bson.M{
			"winner_id":  suggestionID,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the cycle is gone or a winner is already set.
		existing, gerr := s.GetByID(ctx, cycleID)
		if gerr != nil {
			return gerr
		}
		if existing.WinnerID != nil {
			return ErrCycleFinalized
		}
		return mongo.ErrNoDocuments
	}
	return nil
}

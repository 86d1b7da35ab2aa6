package suggestionstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinevote/cinevote/internal/domain/models"
)

// ErrDuplicateSuggestion is returned when the same user suggests the same
// movie twice in one cycle. The unique index on (cycle_id, submitted_by_id,
// tmdb_id) is the source of truth; concurrent submits race safely.
var ErrDuplicateSuggestion = errors.New("you have already suggested this movie for this cycle")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("suggestions")}
}

// GetByID loads a suggestion by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Suggestion, error) {
	var sg models.Suggestion
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sg); err != nil {
		return nil, err
	}
	return &sg, nil
}

// Create inserts a suggestion. The handler has already verified the cycle
// is in its suggestion phase; this store only enforces dedup.
func (s *Store) Create(ctx context.Context, sg models.Suggestion) (models.Suggestion, error) {
	sg.ID = primitive.NewObjectID()
	if sg.SubmittedAt.IsZero() {
		sg.SubmittedAt = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, sg); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Suggestion{}, ErrDuplicateSuggestion
		}
		return models.Suggestion{}, err
	}
	return sg, nil
}

// DeleteOwned removes a suggestion only if it belongs to the given user.
// Returns mongo.ErrNoDocuments when the suggestion does not exist or is
// owned by someone else; callers treat both the same way.
func (s *Store) DeleteOwned(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "submitted_by_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByCycle returns a cycle's suggestions in submission order. Submission
// order matters: it breaks ties when the winner is finalized.
func (s *Store) ListByCycle(ctx context.Context, cycleID primitive.ObjectID) ([]models.Suggestion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"cycle_id": cycleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Suggestion
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUserAndCycle returns one user's suggestions in a cycle.
func (s *Store) ListByUserAndCycle(ctx context.Context, userID, cycleID primitive.ObjectID) ([]models.Suggestion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"cycle_id": cycleID, "submitted_by_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Suggestion
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByCycle removes all suggestions for a cycle. Used when an admin
// deletes the cycle itself.
func (s *Store) DeleteByCycle(ctx context.Context, cycleID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"cycle_id": cycleID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByCycle returns the number of suggestions in a cycle.
func (s *Store) CountByCycle(ctx context.Context, cycleID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"cycle_id": cycleID})
}

// internal/app/store/loginhistory/store.go
package loginhistory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinevote/cinevote/internal/domain/models"
)

// Store records successful sign-ins. Writes are best effort: a failed
// audit insert never blocks a login, so callers log and move on.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_history")}
}

// Record inserts a login event for a profile.
func (s *Store) Record(ctx context.Context, profileID primitive.ObjectID, method, ip string) error {
	_, err := s.c.InsertOne(ctx, models.LoginRecord{
		ProfileID: profileID,
		Method:    method,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// RecentByProfile returns the newest login events for a profile, most
// recent first.
func (s *Store) RecentByProfile(ctx context.Context, profileID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"profile_id": profileID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LoginRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

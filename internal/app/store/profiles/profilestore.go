package profilestore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinevote/cinevote/internal/app/system/normalize"
	"github.com/cinevote/cinevote/internal/domain/models"
)

var (
	// ErrDuplicateEmail is returned when a profile with this email already exists.
	ErrDuplicateEmail = errors.New("a profile with this email already exists")
	// ErrBadUsername is returned when a username normalizes to nothing usable.
	ErrBadUsername = errors.New("username must not be empty")
	errBadRole     = errors.New(`role must be "user"|"admin"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// GetByID loads a profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail looks up a profile by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByGoogleID looks up a profile by Google subject id.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByGoogleID(ctx context.Context, googleID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new profile after normalizing and validating fields.
// New profiles default to the user role; admins are promoted afterwards.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	p.ID = primitive.NewObjectID()
	p.Email = normalize.Email(p.Email)
	if p.Username == "" {
		p.Username = normalize.UsernameFromEmail(p.Email)
	}
	p.Username = normalize.Username(p.Username)
	p.UsernameCI = normalize.UsernameCI(p.Username)
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	if !models.ValidRole(p.Role) {
		return models.Profile{}, errBadRole
	}
	if p.AuthMethod == "" {
		p.AuthMethod = models.AuthMethodPassword
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, err
	}
	return p, nil
}

// EnsureProfile returns the profile for an email, creating one lazily if it
// does not exist yet. The username defaults to the email's local part. Used
// by OAuth sign-in, where a first login has no signup step.
func (s *Store) EnsureProfile(ctx context.Context, email, googleID string) (*models.Profile, error) {
	existing, err := s.GetByEmail(ctx, email)
	if err == nil {
		// Link the Google subject on first OAuth login of a password account.
		if googleID != "" && existing.GoogleID == "" {
			update := bson.M{"google_id": googleID, "updated_at": time.Now().UTC()}
			if _, err := s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": update}); err != nil {
				return nil, err
			}
			existing.GoogleID = googleID
		}
		return existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	created, err := s.Create(ctx, models.Profile{
		Email:      email,
		GoogleID:   googleID,
		AuthMethod: models.AuthMethodGoogle,
	})
	if err != nil {
		// Lost a race with a concurrent first login; read the winner.
		if errors.Is(err, ErrDuplicateEmail) {
			return s.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return &created, nil
}

// UpdateRole sets a profile's role. The caller is responsible for the
// authorization decision; this is a plain write. Unknown roles are
// rejected rather than coerced.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if !models.ValidRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateUsername changes a profile's display name.
func (s *Store) UpdateUsername(ctx context.Context, id primitive.ObjectID, username string) error {
	username = normalize.Username(username)
	if username == "" {
		return ErrBadUsername
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"username":    username,
		"username_ci": normalize.UsernameCI(username),
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns all profiles ordered by folded username. The member list is
// small for this app, so no pagination.
func (s *Store) List(ctx context.Context) ([]models.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

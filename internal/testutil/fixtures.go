package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinevote/cinevote/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts a profile with a unique email and returns it.
func (f *Fixtures) CreateProfile(ctx context.Context, username, role string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		Email:      username + "-" + uuid.NewString()[:8] + "@example.com",
		Role:       role,
		AuthMethod: models.AuthMethodPassword,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("insert test profile: %v", err)
	}
	return p
}

// CreateCycle inserts a voting cycle with the given window and returns it.
func (f *Fixtures) CreateCycle(ctx context.Context, name string, suggestionStart, votingStart, votingEnd time.Time) models.VotingCycle {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.VotingCycle{
		ID:              primitive.NewObjectID(),
		Name:            name,
		SuggestionStart: suggestionStart,
		VotingStart:     votingStart,
		VotingEnd:       votingEnd,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("voting_cycles").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("insert test cycle: %v", err)
	}
	return c
}

// CreateSuggestion inserts a suggestion and returns it.
func (f *Fixtures) CreateSuggestion(ctx context.Context, cycleID, userID primitive.ObjectID, title string, tmdbID int64) models.Suggestion {
	f.t.Helper()

	sg := models.Suggestion{
		ID:            primitive.NewObjectID(),
		CycleID:       cycleID,
		SubmittedByID: userID,
		MovieTitle:    title,
		TMDBID:        tmdbID,
		SubmittedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("suggestions").InsertOne(ctx, sg); err != nil {
		f.t.Fatalf("insert test suggestion: %v", err)
	}
	return sg
}

// CreateVote inserts a vote and returns it.
func (f *Fixtures) CreateVote(ctx context.Context, cycleID, suggestionID, voterID primitive.ObjectID) models.Vote {
	f.t.Helper()

	v := models.Vote{
		ID:           primitive.NewObjectID(),
		CycleID:      cycleID,
		SuggestionID: suggestionID,
		VoterID:      voterID,
		VotedAt:      time.Now().UTC(),
	}
	if _, err := f.db.Collection("votes").InsertOne(ctx, v); err != nil {
		f.t.Fatalf("insert test vote: %v", err)
	}
	return v
}

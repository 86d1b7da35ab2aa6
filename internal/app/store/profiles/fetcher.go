package profilestore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinevote/cinevote/internal/app/system/auth"
)

// Fetcher adapts the profile store to auth.ProfileFetcher so the session
// manager can refresh claims after a role change.
type Fetcher struct {
	store *Store
}

// NewFetcher creates a Fetcher backed by the given store.
func NewFetcher(store *Store) *Fetcher {
	return &Fetcher{store: store}
}

// FetchUser loads a profile and maps it to session claims.
// Returns nil when the id is malformed or the profile does not exist.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	p, err := f.store.GetByID(ctx, oid)
	if err != nil {
		return nil
	}
	return &auth.SessionUser{
		ID:       p.ID.Hex(),
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
	}
}

package loginhistory

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinevote/cinevote/internal/domain/models"
	"github.com/cinevote/cinevote/internal/testutil"
)

func TestRecord_And_RecentByProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	store := New(db)
	profileID := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		if err := store.Record(ctx, profileID, models.AuthMethodPassword, "10.0.0.1"); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := store.Record(ctx, primitive.NewObjectID(), models.AuthMethodGoogle, "10.0.0.2"); err != nil {
		t.Fatalf("Record for other profile failed: %v", err)
	}

	recent, err := store.RecentByProfile(ctx, profileID, 2)
	if err != nil {
		t.Fatalf("RecentByProfile failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	if recent[0].CreatedAt.Before(recent[1].CreatedAt) {
		t.Error("records not sorted most recent first")
	}
	for _, rec := range recent {
		if rec.ProfileID != profileID {
			t.Errorf("got record for profile %s, want %s", rec.ProfileID.Hex(), profileID.Hex())
		}
		if rec.Method != models.AuthMethodPassword {
			t.Errorf("method = %q, want %q", rec.Method, models.AuthMethodPassword)
		}
	}
}

func TestRecentByProfile_EmptyHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	recent, err := New(db).RecentByProfile(ctx, primitive.NewObjectID(), 5)
	if err != nil {
		t.Fatalf("RecentByProfile failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("got %d records, want none", len(recent))
	}
}

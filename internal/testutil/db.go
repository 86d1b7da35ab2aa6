package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB connects to the Mongo instance named by CINEVOTE_TEST_MONGO_URI
// and returns a uniquely named throwaway database. Tests that need Mongo are
// skipped when the variable is unset or the server is unreachable, so the
// pure-logic suite still runs anywhere.
//
// The database is dropped and the client disconnected via t.Cleanup.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("CINEVOTE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CINEVOTE_TEST_MONGO_URI not set; skipping Mongo-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("cannot connect to test Mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("cannot ping test Mongo: %v", err)
	}

	name := fmt.Sprintf("cinevote_test_%s", uuid.NewString()[:8])
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("dropping test database %s: %v", name, err)
		}
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a deadline suitable for one test's
// database calls.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	t.Cleanup(cancel)
	return ctx
}

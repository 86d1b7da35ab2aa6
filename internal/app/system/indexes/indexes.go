// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.

The unique indexes here are load-bearing: suggestion dedup and the
one-vote-per-cycle rule rely on the server rejecting duplicate keys, not
on application-level checks.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureProfiles(ctx, db); err != nil {
		problems = append(problems, "profiles: "+err.Error())
	}
	if err := ensureCycles(ctx, db); err != nil {
		problems = append(problems, "voting_cycles: "+err.Error())
	}
	if err := ensureSuggestions(ctx, db); err != nil {
		problems = append(problems, "suggestions: "+err.Error())
	}
	if err := ensureVotes(ctx, db); err != nil {
		problems = append(problems, "votes: "+err.Error())
	}
	if err := ensureLoginHistory(ctx, db); err != nil {
		problems = append(problems, "login_history: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("profiles"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetName("username_ci"),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetName("uniq_google_id").SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "google_id", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
	})
}

func ensureCycles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("voting_cycles"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "voting_end", Value: 1}},
			Options: options.Index().SetName("voting_end"),
		},
		{
			Keys:    bson.D{{Key: "suggestion_start", Value: 1}, {Key: "voting_start", Value: 1}},
			Options: options.Index().SetName("suggestion_window"),
		},
	})
}

func ensureSuggestions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("suggestions"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "cycle_id", Value: 1},
				{Key: "submitted_by_id", Value: 1},
				{Key: "tmdb_id", Value: 1},
			},
			Options: options.Index().SetName("uniq_cycle_user_movie").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "cycle_id", Value: 1}, {Key: "submitted_at", Value: 1}},
			Options: options.Index().SetName("cycle_submitted_at"),
		},
	})
}

func ensureVotes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("votes"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "cycle_id", Value: 1}, {Key: "voter_id", Value: 1}},
			Options: options.Index().SetName("uniq_cycle_voter").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "cycle_id", Value: 1}, {Key: "suggestion_id", Value: 1}},
			Options: options.Index().SetName("cycle_suggestion"),
		},
	})
}

func ensureLoginHistory(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("login_history"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("profile_recent"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameUnique(a, b *bool) bool {
	av, bv := false, false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		zap.L().Warn("listing existing indexes failed; will attempt creates",
			zap.String("collection", coll.Name()), zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		desiredName := ""
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameUnique(desiredUnique, ex.Unique) {
				continue
			}
			// Options mismatch (e.g. upgrading to unique). Drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				// Same keys under another name; usable as-is.
				zap.L().Info("reusing existing index with different name",
					zap.String("collection", coll.Name()),
					zap.String("keys", sig))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

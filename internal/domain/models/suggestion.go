// internal/domain/models/suggestion.go
package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Suggestion is one user's proposed movie for one cycle.
//
// The movie metadata is a snapshot captured at suggestion time from the
// catalog response; it is never re-fetched, so the cycle's record of a
// movie stays stable even if the catalog entry changes later. TMDBID is
// the catalog identifier duplicates are keyed on; IMDBID is carried as
// display metadata only.
type Suggestion struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CycleID       primitive.ObjectID `bson:"cycle_id" json:"cycle_id"`
	SubmittedByID primitive.ObjectID `bson:"submitted_by_id" json:"submitted_by_id"`

	MovieTitle   string          `bson:"movie_title" json:"movie_title"`
	TMDBID       int64           `bson:"tmdb_id" json:"tmdb_id"`
	IMDBID       string          `bson:"imdb_id,omitempty" json:"imdb_id,omitempty"`
	Year         string          `bson:"year,omitempty" json:"year,omitempty"`
	Runtime      int             `bson:"runtime,omitempty" json:"runtime,omitempty"` // minutes
	Genre        string          `bson:"genre,omitempty" json:"genre,omitempty"`
	Director     string          `bson:"director,omitempty" json:"director,omitempty"`
	Plot         string          `bson:"plot,omitempty" json:"plot,omitempty"`
	PosterURL    string          `bson:"poster_url,omitempty" json:"poster_url,omitempty"`
	Rating       float64         `bson:"rating,omitempty" json:"rating,omitempty"`
	MovieDetails json.RawMessage `bson:"movie_details,omitempty" json:"movie_details,omitempty"` // raw catalog response

	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
}

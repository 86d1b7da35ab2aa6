package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/cinevote/cinevote/internal/tmdb"
)

func TestMovieDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/348" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q", got)
		}
		if got := r.URL.Query().Get("append_to_response"); got == "" {
			t.Error("append_to_response missing")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 348,
			"title": "Alien",
			"overview": "A commercial crew aboard the Nostromo...",
			"poster_path": "/abc.jpg",
			"release_date": "1979-05-25",
			"runtime": 117,
			"imdb_id": "tt0078748",
			"vote_average": 8.1,
			"genres": [{"id": 27, "name": "Horror"}, {"id": 878, "name": "Science Fiction"}],
			"credits": {"crew": [
				{"name": "Someone Else", "job": "Producer"},
				{"name": "Ridley Scott", "job": "Director"}
			]}
		}`))
	}))
	defer srv.Close()

	c := tmdb.NewWithBaseURL("test-key", srv.URL, zap.NewNop())
	m, err := c.MovieDetails(context.Background(), 348)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}

	if m.Title != "Alien" || m.IMDBID != "tt0078748" || m.Runtime != 117 {
		t.Errorf("movie = %+v", m)
	}
	if got := m.Year(); got != "1979" {
		t.Errorf("Year() = %q", got)
	}
	if got := m.Director(); got != "Ridley Scott" {
		t.Errorf("Director() = %q", got)
	}
	if got := m.PosterURL(); got != tmdb.PosterBaseURL+"/abc.jpg" {
		t.Errorf("PosterURL() = %q", got)
	}
	if len(m.Raw) == 0 {
		t.Error("Raw snapshot is empty")
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "alien" {
			t.Errorf("query = %q", got)
		}
		w.Write([]byte(`{"page": 1, "results": [{"id": 348, "title": "Alien"}], "total_pages": 1, "total_results": 1}`))
	}))
	defer srv.Close()

	c := tmdb.NewWithBaseURL("test-key", srv.URL, zap.NewNop())
	p, err := c.Search(context.Background(), "alien", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(p.Results) != 1 || p.Results[0].ID != 348 {
		t.Errorf("results = %+v", p.Results)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_message": "Invalid API key"}`))
	}))
	defer srv.Close()

	c := tmdb.NewWithBaseURL("bad-key", srv.URL, zap.NewNop())
	_, err := c.Popular(context.Background(), 1)

	var se *tmdb.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StatusError", err)
	}
	if se.Code != http.StatusUnauthorized {
		t.Errorf("code = %d", se.Code)
	}
}

func TestMovieHelpers_ZeroValues(t *testing.T) {
	var m tmdb.Movie
	if m.Year() != "" || m.Director() != "" || m.PosterURL() != "" {
		t.Errorf("zero movie helpers = %q %q %q", m.Year(), m.Director(), m.PosterURL())
	}
}

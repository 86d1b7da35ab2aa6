// Package tmdb is a minimal client for The Movie Database HTTP API,
// covering the lookups the suggestion flow needs: search, browse, and a
// single-movie detail fetch with the extras bundled in one round trip.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"

	// PosterBaseURL prefixes the poster_path values the API returns.
	PosterBaseURL = "https://image.tmdb.org/t/p/w500"

	// detailAppend bundles the extra sections the detail page renders so
	// one request covers the whole page.
	detailAppend = "credits,keywords,similar,videos,images,watch/providers,release_dates,reviews"
)

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: unexpected status %d: %s", e.Code, e.Body)
}

// Client calls the TMDB v3 API with an API key.
type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
	log     *zap.Logger
}

// New creates a Client. The HTTP client carries its own timeout so a slow
// catalog cannot hold a handler past its context deadline.
func New(apiKey string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
		log:     logger,
	}
}

// NewWithBaseURL creates a Client against a different endpoint. Tests use
// this to point at an httptest server.
func NewWithBaseURL(apiKey, baseURL string, logger *zap.Logger) *Client {
	c := New(apiKey, logger)
	c.baseURL = baseURL
	return c
}

// Movie is the subset of a TMDB movie record the app reads, plus the raw
// response body for snapshotting into a suggestion.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	IMDBID      string  `json:"imdb_id"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []Genre `json:"genres"`

	Credits *Credits `json:"credits,omitempty"`

	// Raw is the full response body, kept verbatim so the stored catalog
	// snapshot survives API schema drift.
	Raw json.RawMessage `json:"-"`
}

// Genre is a TMDB genre pair.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Credits carries the crew list; the app only reads directors from it.
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// CrewMember is one crew entry from the credits section.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Director returns the first credited director, or "".
func (m *Movie) Director() string {
	if m.Credits == nil {
		return ""
	}
	for _, c := range m.Credits.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

// Year returns the four-digit release year, or "".
func (m *Movie) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// PosterURL returns the full poster image URL, or "" when the movie has no
// poster.
func (m *Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return PosterBaseURL + m.PosterPath
}

// GenreNames returns the genre names joined for display.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// Page is one page of movie list results.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// MovieDetails fetches one movie with the full detail bundle appended.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Movie, error) {
	q := url.Values{}
	q.Set("append_to_response", detailAppend)

	body, err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q)
	if err != nil {
		return nil, err
	}

	var m Movie
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("tmdb: decoding movie %d: %w", id, err)
	}
	m.Raw = body
	return &m, nil
}

// Search runs a title search.
func (c *Client) Search(ctx context.Context, query string, page int) (*Page, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(pageOrFirst(page)))
	return c.getPage(ctx, "/search/movie", q)
}

// Popular lists currently popular movies.
func (c *Client) Popular(ctx context.Context, page int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(pageOrFirst(page)))
	return c.getPage(ctx, "/movie/popular", q)
}

// DiscoverByGenre lists movies in a genre, most popular first.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID int64, page int) (*Page, error) {
	q := url.Values{}
	q.Set("with_genres", strconv.FormatInt(genreID, 10))
	q.Set("sort_by", "popularity.desc")
	q.Set("page", strconv.Itoa(pageOrFirst(page)))
	return c.getPage(ctx, "/discover/movie", q)
}

// Genres returns the movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	body, err := c.get(ctx, "/genre/movie/list", url.Values{})
	if err != nil {
		return nil, err
	}
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("tmdb: decoding genre list: %w", err)
	}
	return out.Genres, nil
}

func (c *Client) getPage(ctx context.Context, path string, q url.Values) (*Page, error) {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	var p Page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("tmdb: decoding %s: %w", path, err)
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	q.Set("api_key", c.apiKey)
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("tmdb: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("tmdb request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

func pageOrFirst(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

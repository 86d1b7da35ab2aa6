// internal/app/features/movies/handler.go
package movies

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	cyclestore "github.com/cinevote/cinevote/internal/app/store/cycles"
	suggestionstore "github.com/cinevote/cinevote/internal/app/store/suggestions"
	"github.com/cinevote/cinevote/internal/app/system/authz"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/app/system/viewdata"
	"github.com/cinevote/cinevote/internal/tmdb"
)

// Handler serves the movie catalog pages backed by TMDB.
type Handler struct {
	Catalog     *tmdb.Client
	Cycles      *cyclestore.Store
	Suggestions *suggestionstore.Store
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger

	sanitize *bluemonday.Policy
}

// NewHandler constructs a movies Handler.
func NewHandler(db *mongo.Database, catalog *tmdb.Client, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Catalog:     catalog,
		Cycles:      cyclestore.New(db),
		Suggestions: suggestionstore.New(db),
		ErrLog:      errLog,
		Log:         logger,
		// Catalog overview text is third-party content; strip any markup.
		sanitize: bluemonday.StrictPolicy(),
	}
}

type movieVM struct {
	ID        int64
	Title     string
	Year      string
	PosterURL string
	Rating    float64
}

type listPageData struct {
	viewdata.BaseVM
	Heading   string
	Query     string
	Movies    []movieVM
	Page      int
	HasPrev   bool
	HasNext   bool
	PrevPage  int
	NextPage  int
	Genres    []tmdb.Genre
	GenreID   int64
	CanSubmit bool
}

type detailPageData struct {
	viewdata.BaseVM
	Movie       *tmdb.Movie
	Year        string
	Director    string
	PosterURL   string
	Overview    string
	Genres      string
	RuntimeText string

	CanSubmit   bool
	CycleID     string
	CycleName   string
	AlreadyMine bool
}

// ServePopular handles GET /movies.
func (h *Handler) ServePopular(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Catalog.Popular(ctx, page)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tmdb popular failed", err, "The movie catalog is unavailable right now.", "/")
		return
	}

	h.renderList(w, r, "Popular movies", "", 0, res)
}

// ServeSearch handles GET /movies/search?q=...
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(query.Get(r, "q"))
	if q == "" {
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}
	page := pageParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Catalog.Search(ctx, q, page)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tmdb search failed", err, "The movie catalog is unavailable right now.", "/movies")
		return
	}

	h.renderList(w, r, `Results for "`+q+`"`, q, 0, res)
}

// ServeGenre handles GET /movies/genre/{genreID}.
func (h *Handler) ServeGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := strconv.ParseInt(chi.URLParam(r, "genreID"), 10, 64)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad genre id", err, "That genre doesn't exist.", "/movies")
		return
	}
	page := pageParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Catalog.DiscoverByGenre(ctx, genreID, page)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tmdb discover failed", err, "The movie catalog is unavailable right now.", "/movies")
		return
	}

	heading := "Movies by genre"
	if genres, gerr := h.Catalog.Genres(ctx); gerr == nil {
		for _, g := range genres {
			if g.ID == genreID {
				heading = g.Name + " movies"
				break
			}
		}
	}

	h.renderList(w, r, heading, "", genreID, res)
}

// ServeDetail handles GET /movies/{tmdbID}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.ParseInt(chi.URLParam(r, "tmdbID"), 10, 64)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad movie id", err, "That movie doesn't exist.", "/movies")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Catalog.MovieDetails(ctx, tmdbID)
	if err != nil {
		var se *tmdb.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			uierrors.RenderNotFound(w, r, "That movie isn't in the catalog.", "/movies")
			return
		}
		h.ErrLog.LogServerError(w, r, "tmdb details failed", err, "The movie catalog is unavailable right now.", "/movies")
		return
	}

	data := detailPageData{
		BaseVM:      viewdata.NewBaseVM(r, m.Title, "/movies"),
		Movie:       m,
		Year:        m.Year(),
		Director:    m.Director(),
		PosterURL:   m.PosterURL(),
		Overview:    h.sanitize.Sanitize(m.Overview),
		Genres:      strings.Join(m.GenreNames(), ", "),
		RuntimeText: runtimeText(m.Runtime),
	}

	// The suggest button appears only while a cycle is accepting
	// suggestions, and only if the user hasn't already suggested this movie.
	now := time.Now().UTC()
	if cycle, cerr := h.Cycles.ActiveSuggestionCycle(ctx, now); cerr == nil {
		data.CanSubmit = true
		data.CycleID = cycle.ID.Hex()
		data.CycleName = cycle.Name
		if _, _, userID, ok := authz.UserCtx(r); ok {
			mine, merr := h.Suggestions.ListByUserAndCycle(ctx, userID, cycle.ID)
			if merr == nil {
				for _, sg := range mine {
					if sg.TMDBID == tmdbID {
						data.AlreadyMine = true
						break
					}
				}
			}
		}
	} else if !errors.Is(cerr, mongo.ErrNoDocuments) {
		h.Log.Warn("active cycle lookup failed", zap.Error(cerr))
	}

	templates.Render(w, r, "movie_detail", data)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, heading, q string, genreID int64, res *tmdb.Page) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := listPageData{
		BaseVM:   viewdata.NewBaseVM(r, heading, "/"),
		Heading:  heading,
		Query:    q,
		Page:     res.Page,
		HasPrev:  res.Page > 1,
		HasNext:  res.Page < res.TotalPages,
		PrevPage: res.Page - 1,
		NextPage: res.Page + 1,
		GenreID:  genreID,
	}
	for _, m := range res.Results {
		data.Movies = append(data.Movies, movieVM{
			ID:        m.ID,
			Title:     m.Title,
			Year:      m.Year(),
			PosterURL: m.PosterURL(),
			Rating:    m.VoteAverage,
		})
	}

	if genres, err := h.Catalog.Genres(ctx); err == nil {
		data.Genres = genres
	}
	if _, err := h.Cycles.ActiveSuggestionCycle(ctx, time.Now().UTC()); err == nil {
		data.CanSubmit = true
	}

	templates.Render(w, r, "movie_list", data)
}

func pageParam(r *http.Request) int {
	p, err := strconv.Atoi(query.Get(r, "page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func runtimeText(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h := minutes / 60
	m := minutes % 60
	switch {
	case h == 0:
		return strconv.Itoa(m) + "m"
	case m == 0:
		return strconv.Itoa(h) + "h"
	default:
		return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m"
	}
}

// internal/app/features/suggestions/handler.go
package suggestions

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	"github.com/cinevote/cinevote/internal/app/policy/ballotpolicy"
	cyclestore "github.com/cinevote/cinevote/internal/app/store/cycles"
	suggestionstore "github.com/cinevote/cinevote/internal/app/store/suggestions"
	votestore "github.com/cinevote/cinevote/internal/app/store/votes"
	"github.com/cinevote/cinevote/internal/app/system/gates"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/domain/models"
	"github.com/cinevote/cinevote/internal/tmdb"
)

// Handler manages suggestion submission and withdrawal. Both operations
// are phase-gated: they only succeed while the target cycle is in its
// suggestion window at the time of the request.
type Handler struct {
	Cycles      *cyclestore.Store
	Suggestions *suggestionstore.Store
	Votes       *votestore.Store
	Catalog     *tmdb.Client
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger

	sanitize *bluemonday.Policy
}

// NewHandler constructs a suggestions Handler.
func NewHandler(db *mongo.Database, catalog *tmdb.Client, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Cycles:      cyclestore.New(db),
		Suggestions: suggestionstore.New(db),
		Votes:       votestore.New(db),
		Catalog:     catalog,
		ErrLog:      errLog,
		Log:         logger,
		sanitize:    bluemonday.StrictPolicy(),
	}
}

// HandleSubmit handles POST /suggestions.
//
// The movie's catalog record is fetched and snapshotted onto the
// suggestion, so the ballot stays stable even if the catalog entry changes
// later.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireAuth(w, r, "/login")
	if !user.OK {
		return
	}
	userID := user.UserID

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse suggestion form failed", err, "The form could not be read.", "/movies")
		return
	}

	cycleID, err := primitive.ObjectIDFromHex(r.PostFormValue("cycle_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad cycle id", err, "That cycle doesn't exist.", "/movies")
		return
	}
	tmdbID, err := strconv.ParseInt(r.PostFormValue("tmdb_id"), 10, 64)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad movie id", err, "That movie doesn't exist.", "/movies")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	cycle, err := h.Cycles.GetByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "That cycle doesn't exist.", "/movies")
			return
		}
		h.ErrLog.LogServerError(w, r, "load cycle failed", err, "A database error occurred.", "/movies")
		return
	}

	// Phase check against the clock at submit time, not page-load time.
	now := time.Now().UTC()
	if !ballotpolicy.CanSubmit(cycle, now) {
		phase := cycle.PhaseAt(now)
		uierrors.RenderForbidden(w, r,
			"Suggestions for "+cycle.Name+" are closed ("+phase.Label()+").",
			"/cycles/"+cycle.ID.Hex())
		return
	}

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

	_, err = h.Suggestions.Create(ctx, models.Suggestion{
		CycleID:       cycle.ID,
		SubmittedByID: userID,
		MovieTitle:    m.Title,
		TMDBID:        m.ID,
		IMDBID:        m.IMDBID,
		Year:          m.Year(),
		Runtime:       m.Runtime,
		Genre:         strings.Join(m.GenreNames(), ", "),
		Director:      m.Director(),
		Plot:          h.sanitize.Sanitize(m.Overview),
		PosterURL:     m.PosterURL(),
		Rating:        m.VoteAverage,
		MovieDetails:  m.Raw,
		SubmittedAt:   now,
	})
	if err != nil {
		if errors.Is(err, suggestionstore.ErrDuplicateSuggestion) {
			// Already on the ballot from this user; just show it.
			http.Redirect(w, r, "/cycles/"+cycle.ID.Hex(), http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "create suggestion failed", err, "Unable to save your suggestion.", "/movies")
		return
	}

	h.Log.Info("suggestion submitted",
		zap.String("cycle_id", cycle.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Int64("tmdb_id", m.ID))

	http.Redirect(w, r, "/cycles/"+cycle.ID.Hex(), http.StatusSeeOther)
}

// HandleWithdraw handles POST /suggestions/{suggestionID}/withdraw.
//
// Only the owner can withdraw, and only while the cycle is still in its
// suggestion phase; once voting opens the ballot is frozen.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireAuth(w, r, "/login")
	if !user.OK {
		return
	}
	userID := user.UserID

	suggestionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "suggestionID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad suggestion id", err, "That suggestion doesn't exist.", "/cycles")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sg, err := h.Suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "That suggestion doesn't exist.", "/cycles")
			return
		}
		h.ErrLog.LogServerError(w, r, "load suggestion failed", err, "A database error occurred.", "/cycles")
		return
	}

	cycle, err := h.Cycles.GetByID(ctx, sg.CycleID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load cycle failed", err, "A database error occurred.", "/cycles")
		return
	}

	backURL := "/cycles/" + cycle.ID.Hex()
	now := time.Now().UTC()
	if !ballotpolicy.CanWithdraw(cycle, now) {
		uierrors.RenderForbidden(w, r,
			"The ballot for "+cycle.Name+" is frozen ("+cycle.PhaseAt(now).Label()+").", backURL)
		return
	}

	if err := h.Suggestions.DeleteOwned(ctx, suggestionID, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderForbidden(w, r, "You can only withdraw your own suggestions.", backURL)
			return
		}
		h.ErrLog.LogServerError(w, r, "withdraw suggestion failed", err, "Unable to withdraw the suggestion.", backURL)
		return
	}

	// No votes should exist during the suggestion phase, but clean up any
	// strays so the tally never references a withdrawn suggestion.
	if _, err := h.Votes.DeleteBySuggestion(ctx, suggestionID); err != nil {
		h.Log.Warn("cleanup of votes for withdrawn suggestion failed",
			zap.Error(err), zap.String("suggestion_id", suggestionID.Hex()))
	}

	h.Log.Info("suggestion withdrawn",
		zap.String("suggestion_id", suggestionID.Hex()),
		zap.String("user_id", userID.Hex()))

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

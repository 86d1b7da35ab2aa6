// internal/app/features/votes/handler.go
package votes

import (
	"context"
	"errors"
	"net/http"
	"time"

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
)

// Handler records votes. One vote per user per cycle, enforced by the
// unique index rather than a read-then-write check.
type Handler struct {
	Cycles      *cyclestore.Store
	Suggestions *suggestionstore.Store
	Votes       *votestore.Store
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

// NewHandler constructs a votes Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Cycles:      cyclestore.New(db),
		Suggestions: suggestionstore.New(db),
		Votes:       votestore.New(db),
		ErrLog:      errLog,
		Log:         logger,
	}
}

// HandleCast handles POST /votes.
func (h *Handler) HandleCast(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireAuth(w, r, "/login")
	if !user.OK {
		return
	}
	userID := user.UserID

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse vote form failed", err, "The form could not be read.", "/cycles")
		return
	}

	cycleID, err := primitive.ObjectIDFromHex(r.PostFormValue("cycle_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad cycle id", err, "That cycle doesn't exist.", "/cycles")
		return
	}
	suggestionID, err := primitive.ObjectIDFromHex(r.PostFormValue("suggestion_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad suggestion id", err, "That suggestion doesn't exist.", "/cycles")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cycle, err := h.Cycles.GetByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "That cycle doesn't exist.", "/cycles")
			return
		}
		h.ErrLog.LogServerError(w, r, "load cycle failed", err, "A database error occurred.", "/cycles")
		return
	}

	backURL := "/cycles/" + cycle.ID.Hex()

	now := time.Now().UTC()
	if !ballotpolicy.CanVote(cycle, now) {
		uierrors.RenderForbidden(w, r,
			"Voting for "+cycle.Name+" is not open ("+cycle.PhaseAt(now).Label()+").", backURL)
		return
	}

	// The ballot entry must belong to the cycle being voted in.
	sg, err := h.Suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "That suggestion doesn't exist.", backURL)
			return
		}
		h.ErrLog.LogServerError(w, r, "load suggestion failed", err, "A database error occurred.", backURL)
		return
	}
	if sg.CycleID != cycle.ID {
		h.ErrLog.LogBadRequest(w, r, "suggestion belongs to a different cycle", nil,
			"That suggestion isn't on this ballot.", backURL)
		return
	}

	_, err = h.Votes.Cast(ctx, models.Vote{
		CycleID:      cycle.ID,
		SuggestionID: suggestionID,
		VoterID:      userID,
	})
	if err != nil {
		if errors.Is(err, votestore.ErrAlreadyVoted) {
			uierrors.RenderForbidden(w, r, "You have already voted in "+cycle.Name+".", backURL)
			return
		}
		h.ErrLog.LogServerError(w, r, "cast vote failed", err, "Unable to record your vote.", backURL)
		return
	}

	h.Log.Info("vote cast",
		zap.String("cycle_id", cycle.ID.Hex()),
		zap.String("suggestion_id", suggestionID.Hex()),
		zap.String("voter_id", userID.Hex()))

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// internal/app/features/cycles/admin.go
package cycles

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	"github.com/cinevote/cinevote/internal/app/policy/ballotpolicy"
	cyclestore "github.com/cinevote/cinevote/internal/app/store/cycles"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/app/system/viewdata"
	"github.com/cinevote/cinevote/internal/domain/models"
)

// datetime-local inputs post this layout, without a zone. Values are
// interpreted as UTC.
const formTimeLayout = "2006-01-02T15:04"

type formPageData struct {
	viewdata.BaseVM
	Editing         bool
	CycleID         string
	Name            string
	SuggestionStart string
	VotingStart     string
	VotingEnd       string
	Error           string
}

// ServeNew handles GET /cycles/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	data := formPageData{BaseVM: viewdata.NewBaseVM(r, "New cycle", "/cycles")}
	templates.Render(w, r, "cycle_form", data)
}

// ServeEdit handles GET /cycles/{cycleID}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	cycle, ok := h.loadCycle(w, r)
	if !ok {
		return
	}
	if !ballotpolicy.CanEdit(cycle) {
		uierrors.RenderForbidden(w, r,
			cycle.Name+" already has a winner and can no longer be changed.",
			"/cycles/"+cycle.ID.Hex())
		return
	}

	data := formPageData{
		BaseVM:          viewdata.NewBaseVM(r, "Edit "+cycle.Name, "/cycles/"+cycle.ID.Hex()),
		Editing:         true,
		CycleID:         cycle.ID.Hex(),
		Name:            cycle.Name,
		SuggestionStart: cycle.SuggestionStart.UTC().Format(formTimeLayout),
		VotingStart:     cycle.VotingStart.UTC().Format(formTimeLayout),
		VotingEnd:       cycle.VotingEnd.UTC().Format(formTimeLayout),
	}
	templates.Render(w, r, "cycle_form", data)
}

// HandleCreate handles POST /cycles.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	form, ferr := h.parseCycleForm(r)
	if ferr != "" {
		h.rerenderForm(w, r, form, false, "", ferr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Cycles.Create(ctx, form)
	if err != nil {
		if errors.Is(err, models.ErrBadCycleWindow) {
			h.rerenderForm(w, r, form, false, "",
				"Phase boundaries must be in order: suggestions open, then voting opens, then voting ends.")
			return
		}
		h.ErrLog.LogServerError(w, r, "create cycle failed", err, "Unable to create the cycle.", "/cycles")
		return
	}

	h.Log.Info("cycle created",
		zap.String("cycle_id", created.ID.Hex()),
		zap.String("name", created.Name))

	http.Redirect(w, r, "/cycles/"+created.ID.Hex(), http.StatusSeeOther)
}

// HandleUpdate handles POST /cycles/{cycleID}/edit.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	cycle, ok := h.loadCycle(w, r)
	if !ok {
		return
	}

	form, ferr := h.parseCycleForm(r)
	if ferr != "" {
		h.rerenderForm(w, r, form, true, cycle.ID.Hex(), ferr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Cycles.Update(ctx, cycle.ID, form); err != nil {
		switch {
		case errors.Is(err, models.ErrBadCycleWindow):
			h.rerenderForm(w, r, form, true, cycle.ID.Hex(),
				"Phase boundaries must be in order: suggestions open, then voting opens, then voting ends.")
		case errors.Is(err, cyclestore.ErrCycleFinalized):
			uierrors.RenderForbidden(w, r,
				cycle.Name+" already has a winner and can no longer be changed.",
				"/cycles/"+cycle.ID.Hex())
		default:
			h.ErrLog.LogServerError(w, r, "update cycle failed", err, "Unable to save the cycle.", "/cycles")
		}
		return
	}

	h.Log.Info("cycle updated", zap.String("cycle_id", cycle.ID.Hex()))
	http.Redirect(w, r, "/cycles/"+cycle.ID.Hex(), http.StatusSeeOther)
}

// HandleDelete handles POST /cycles/{cycleID}/delete. Suggestions and
// votes for the cycle go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cycle, ok := h.loadCycle(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Cycles.Delete(ctx, cycle.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete cycle failed", err, "Unable to delete the cycle.", "/cycles")
		return
	}
	if _, err := h.Suggestions.DeleteByCycle(ctx, cycle.ID); err != nil {
		h.Log.Warn("cleanup of suggestions for deleted cycle failed",
			zap.Error(err), zap.String("cycle_id", cycle.ID.Hex()))
	}
	if _, err := h.Votes.DeleteByCycle(ctx, cycle.ID); err != nil {
		h.Log.Warn("cleanup of votes for deleted cycle failed",
			zap.Error(err), zap.String("cycle_id", cycle.ID.Hex()))
	}

	h.Log.Info("cycle deleted",
		zap.String("cycle_id", cycle.ID.Hex()),
		zap.String("name", cycle.Name))

	http.Redirect(w, r, "/cycles", http.StatusSeeOther)
}

// HandleFinalize handles POST /cycles/{cycleID}/finalize.
//
// Tallies the votes and records the winner. Ties break toward the
// suggestion submitted first.
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	cycle, ok := h.loadCycle(w, r)
	if !ok {
		return
	}

	backURL := "/cycles/" + cycle.ID.Hex()

	now := time.Now().UTC()
	if !ballotpolicy.CanFinalize(cycle, now) {
		if cycle.WinnerID != nil {
			uierrors.RenderForbidden(w, r, cycle.Name+" already has a winner.", backURL)
			return
		}
		uierrors.RenderForbidden(w, r,
			cycle.Name+" cannot be finalized until voting has ended ("+cycle.PhaseAt(now).Label()+").", backURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	suggestions, err := h.Suggestions.ListByCycle(ctx, cycle.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list suggestions failed", err, "A database error occurred.", backURL)
		return
	}
	if len(suggestions) == 0 {
		uierrors.RenderForbidden(w, r, cycle.Name+" has no suggestions to pick a winner from.", backURL)
		return
	}

	counts, err := h.Votes.CountsByCycle(ctx, cycle.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tally votes failed", err, "A database error occurred.", backURL)
		return
	}

	winner, best := pickWinner(suggestions, counts)

	if err := h.Cycles.SetWinner(ctx, cycle.ID, winner.ID); err != nil {
		if errors.Is(err, cyclestore.ErrCycleFinalized) {
			uierrors.RenderForbidden(w, r, cycle.Name+" already has a winner.", backURL)
			return
		}
		h.ErrLog.LogServerError(w, r, "finalize cycle failed", err, "Unable to finalize the cycle.", backURL)
		return
	}

	h.Log.Info("cycle finalized",
		zap.String("cycle_id", cycle.ID.Hex()),
		zap.String("winner_suggestion_id", winner.ID.Hex()),
		zap.String("winner_title", winner.MovieTitle),
		zap.Int64("votes", best))

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// pickWinner tallies counts over the ballot. The suggestions slice is in
// submission order, so ties break toward the earliest submission.
func pickWinner(suggestions []models.Suggestion, counts map[primitive.ObjectID]int64) (models.Suggestion, int64) {
	winner := suggestions[0]
	best := counts[winner.ID]
	for _, sg := range suggestions[1:] {
		if counts[sg.ID] > best {
			winner = sg
			best = counts[sg.ID]
		}
	}
	return winner, best
}

// loadCycle resolves {cycleID} and fetches the cycle, writing the error
// page itself when it can't.
func (h *Handler) loadCycle(w http.ResponseWriter, r *http.Request) (*models.VotingCycle, bool) {
	cycleID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "cycleID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That cycle doesn't exist.", "/cycles")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cycle, err := h.Cycles.GetByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "That cycle doesn't exist.", "/cycles")
			return nil, false
		}
		h.ErrLog.LogServerError(w, r, "load cycle failed", err, "A database error occurred.", "/cycles")
		return nil, false
	}
	return cycle, true
}

// parseCycleForm reads the shared create/edit form. The returned message
// is empty when the form is valid.
func (h *Handler) parseCycleForm(r *http.Request) (models.VotingCycle, string) {
	if err := r.ParseForm(); err != nil {
		return models.VotingCycle{}, "The form could not be read."
	}

	c := models.VotingCycle{Name: strings.TrimSpace(r.PostFormValue("name"))}
	if c.Name == "" {
		return c, "The cycle needs a name."
	}

	var err error
	if c.SuggestionStart, err = time.ParseInLocation(formTimeLayout, r.PostFormValue("suggestion_start"), time.UTC); err != nil {
		return c, "The suggestion start time is not valid."
	}
	if c.VotingStart, err = time.ParseInLocation(formTimeLayout, r.PostFormValue("voting_start"), time.UTC); err != nil {
		return c, "The voting start time is not valid."
	}
	if c.VotingEnd, err = time.ParseInLocation(formTimeLayout, r.PostFormValue("voting_end"), time.UTC); err != nil {
		return c, "The voting end time is not valid."
	}
	if err := c.Validate(); err != nil {
		return c, "Phase boundaries must be in order: suggestions open, then voting opens, then voting ends."
	}
	return c, ""
}

func (h *Handler) rerenderForm(w http.ResponseWriter, r *http.Request, c models.VotingCycle, editing bool, cycleID, msg string) {
	title := "New cycle"
	back := "/cycles"
	if editing {
		title = "Edit " + c.Name
		back = "/cycles/" + cycleID
	}
	data := formPageData{
		BaseVM:  viewdata.NewBaseVM(r, title, back),
		Editing: editing,
		CycleID: cycleID,
		Name:    c.Name,
		Error:   msg,
	}
	if !c.SuggestionStart.IsZero() {
		data.SuggestionStart = c.SuggestionStart.UTC().Format(formTimeLayout)
	}
	if !c.VotingStart.IsZero() {
		data.VotingStart = c.VotingStart.UTC().Format(formTimeLayout)
	}
	if !c.VotingEnd.IsZero() {
		data.VotingEnd = c.VotingEnd.UTC().Format(formTimeLayout)
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "cycle_form", data)
}

// internal/app/features/cycles/handler.go
package cycles

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	"github.com/cinevote/cinevote/internal/app/policy/ballotpolicy"
	cyclestore "github.com/cinevote/cinevote/internal/app/store/cycles"
	profilestore "github.com/cinevote/cinevote/internal/app/store/profiles"
	suggestionstore "github.com/cinevote/cinevote/internal/app/store/suggestions"
	votestore "github.com/cinevote/cinevote/internal/app/store/votes"
	"github.com/cinevote/cinevote/internal/app/system/authz"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/app/system/viewdata"
	"github.com/cinevote/cinevote/internal/domain/models"
)

// Handler serves the cycle list and detail pages. The detail page is the
// heart of the app: what it shows depends entirely on the cycle's phase at
// render time.
type Handler struct {
	Cycles      *cyclestore.Store
	Suggestions *suggestionstore.Store
	Votes       *votestore.Store
	Profiles    *profilestore.Store
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

// NewHandler constructs a cycles Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Cycles:      cyclestore.New(db),
		Suggestions: suggestionstore.New(db),
		Votes:       votestore.New(db),
		Profiles:    profilestore.New(db),
		ErrLog:      errLog,
		Log:         logger,
	}
}

type cycleRowVM struct {
	ID              string
	Name            string
	PhaseLabel      string
	Phase           string
	SuggestionStart time.Time
	VotingStart     time.Time
	VotingEnd       time.Time
	HasWinner       bool
}

type listPageData struct {
	viewdata.BaseVM
	Cycles []cycleRowVM
}

type suggestionVM struct {
	ID          string
	MovieTitle  string
	Year        string
	Director    string
	Genre       string
	PosterURL   string
	Plot        string
	Rating      float64
	SubmittedBy string
	Mine        bool
	Votes       int64
	IsWinner    bool
	VotedFor    bool
}

type detailPageData struct {
	viewdata.BaseVM
	Cycle       cycleRowVM
	Suggestions []suggestionVM

	CanSuggest  bool
	CanWithdraw bool
	CanVote     bool
	HasVoted    bool
	ShowCounts  bool
	TotalVotes  int64

	HasWinner   bool
	WinnerTitle string
}

// ServeList handles GET /cycles.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cycles, err := h.Cycles.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list cycles failed", err, "A database error occurred.", "/")
		return
	}

	now := time.Now().UTC()
	data := listPageData{BaseVM: viewdata.NewBaseVM(r, "Voting cycles", "/")}
	for _, c := range cycles {
		data.Cycles = append(data.Cycles, cycleRow(&c, now))
	}

	templates.Render(w, r, "cycles_list", data)
}

// ServeDetail handles GET /cycles/{cycleID}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	cycleID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "cycleID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That cycle doesn't exist.", "/cycles")
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

	now := time.Now().UTC()
	phase := cycle.PhaseAt(now)

	suggestions, err := h.Suggestions.ListByCycle(ctx, cycle.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list suggestions failed", err, "A database error occurred.", "/cycles")
		return
	}

	_, _, userID, signedIn := authz.UserCtx(r)

	data := detailPageData{
		BaseVM:     viewdata.NewBaseVM(r, cycle.Name, "/cycles"),
		Cycle:      cycleRow(cycle, now),
		CanSuggest: ballotpolicy.CanSubmit(cycle, now),
		CanVote:    ballotpolicy.CanVote(cycle, now),
		ShowCounts: phase == models.PhaseEnded,
	}

	var counts map[primitive.ObjectID]int64
	if data.ShowCounts {
		counts, err = h.Votes.CountsByCycle(ctx, cycle.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "tally votes failed", err, "A database error occurred.", "/cycles")
			return
		}
		data.TotalVotes, _ = h.Votes.TotalByCycle(ctx, cycle.ID)
	}

	var myVote *models.Vote
	if signedIn && phase == models.PhaseVoting {
		if v, verr := h.Votes.GetByVoter(ctx, cycle.ID, userID); verr == nil {
			myVote = v
			data.HasVoted = true
		} else if !errors.Is(verr, mongo.ErrNoDocuments) {
			h.ErrLog.LogServerError(w, r, "load own vote failed", verr, "A database error occurred.", "/cycles")
			return
		}
	}

	names := h.submitterNames(ctx, suggestions)

	for _, sg := range suggestions {
		vm := suggestionVM{
			ID:          sg.ID.Hex(),
			MovieTitle:  sg.MovieTitle,
			Year:        sg.Year,
			Director:    sg.Director,
			Genre:       sg.Genre,
			PosterURL:   sg.PosterURL,
			Plot:        sg.Plot,
			Rating:      sg.Rating,
			SubmittedBy: names[sg.SubmittedByID],
			Mine:        signedIn && sg.SubmittedByID == userID,
		}
		if counts != nil {
			vm.Votes = counts[sg.ID]
		}
		if cycle.WinnerID != nil && *cycle.WinnerID == sg.ID {
			vm.IsWinner = true
			data.HasWinner = true
			data.WinnerTitle = sg.MovieTitle
		}
		if myVote != nil && myVote.SuggestionID == sg.ID {
			vm.VotedFor = true
		}
		if vm.Mine && phase == models.PhaseSuggestion {
			data.CanWithdraw = true
		}
		data.Suggestions = append(data.Suggestions, vm)
	}

	templates.Render(w, r, "cycle_detail", data)
}

// submitterNames resolves profile ids to display names, best effort. A
// missing profile shows as "someone" rather than failing the page.
func (h *Handler) submitterNames(ctx context.Context, suggestions []models.Suggestion) map[primitive.ObjectID]string {
	names := map[primitive.ObjectID]string{}
	for _, sg := range suggestions {
		if _, done := names[sg.SubmittedByID]; done {
			continue
		}
		if p, err := h.Profiles.GetByID(ctx, sg.SubmittedByID); err == nil {
			names[sg.SubmittedByID] = p.Username
		} else {
			names[sg.SubmittedByID] = "someone"
		}
	}
	return names
}

func cycleRow(c *models.VotingCycle, now time.Time) cycleRowVM {
	phase := c.PhaseAt(now)
	return cycleRowVM{
		ID:              c.ID.Hex(),
		Name:            c.Name,
		PhaseLabel:      phase.Label(),
		Phase:           string(phase),
		SuggestionStart: c.SuggestionStart,
		VotingStart:     c.VotingStart,
		VotingEnd:       c.VotingEnd,
		HasWinner:       c.WinnerID != nil,
	}
}

package home

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	cyclestore "github.com/cinevote/cinevote/internal/app/store/cycles"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/app/system/viewdata"
	"github.com/cinevote/cinevote/internal/domain/models"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Handler renders the landing page.
type Handler struct {
	Cycles *cyclestore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a home Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Cycles: cyclestore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}

type cycleVM struct {
	ID         string
	Name       string
	Phase      string
	PhaseLabel string
	VotingEnd  time.Time
}

type pageData struct {
	viewdata.BaseVM
	HasCurrent bool
	Current    cycleVM
	Upcoming   []cycleVM
}

// Serve handles GET /.
//
// The "current" cycle is the first unfinished one by voting end; its phase
// is derived from the clock at render time.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cycles, err := h.Cycles.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list cycles failed", err, "A database error occurred.", "/")
		return
	}

	now := time.Now().UTC()
	data := pageData{
		BaseVM: viewdata.NewBaseVM(r, "Movie Night", "/"),
	}

	for _, c := range cycles {
		phase := c.PhaseAt(now)
		vm := cycleVM{
			ID:         c.ID.Hex(),
			Name:       c.Name,
			Phase:      string(phase),
			PhaseLabel: phase.Label(),
			VotingEnd:  c.VotingEnd,
		}
		if phase == models.PhaseEnded {
			continue
		}
		if !data.HasCurrent {
			data.HasCurrent = true
			data.Current = vm
			continue
		}
		data.Upcoming = append(data.Upcoming, vm)
	}

	templates.Render(w, r, "home", data)
}

// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	"github.com/cinevote/cinevote/internal/app/store/loginhistory"
	profilestore "github.com/cinevote/cinevote/internal/app/store/profiles"
	"github.com/cinevote/cinevote/internal/app/system/auth"
	"github.com/cinevote/cinevote/internal/app/system/gates"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/app/system/viewdata"
	"github.com/cinevote/cinevote/internal/domain/models"
)

// Handler serves the signed-in user's own profile page.
type Handler struct {
	Profiles     *profilestore.Store
	LoginHistory *loginhistory.Store
	SessionMgr   *auth.SessionManager
	ErrLog       *uierrors.ErrorLogger
	Log          *zap.Logger

	// AllowSelfRoleChange exposes the role picker on the profile page.
	// Meant for demo and development deployments, not production.
	AllowSelfRoleChange bool
}

// NewHandler constructs a profile Handler.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, allowSelfRoleChange bool, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles:            profilestore.New(db),
		LoginHistory:        loginhistory.New(db),
		SessionMgr:          sm,
		ErrLog:              errLog,
		Log:                 logger,
		AllowSelfRoleChange: allowSelfRoleChange,
	}
}

type pageData struct {
	viewdata.BaseVM
	Username      string
	Email         string
	ProfileRole   string
	AuthMethod    string
	CanChangeRole bool
	Notice        string
	Error         string
	RecentLogins  []models.LoginRecord
}

// ServeProfile handles GET /profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireAuth(w, r, "/login")
	if !user.OK {
		return
	}
	userID := user.UserID

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Session refers to a deleted account; force a fresh sign-in.
			h.SessionMgr.Clear(w, r)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "A database error occurred.", "/")
		return
	}

	h.render(w, r, p, r.URL.Query().Get("notice"), "")
}

// HandleUsername handles POST /profile/username.
func (h *Handler) HandleUsername(w http.ResponseWriter, r *http.Request) {
	user := gates.RequireAuth(w, r, "/login")
	if !user.OK {
		return
	}
	userID := user.UserID

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse username form failed", err, "The form could not be read.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Profiles.UpdateUsername(ctx, userID, r.PostFormValue("username")); err != nil {
		if errors.Is(err, profilestore.ErrBadUsername) {
			h.renderCurrent(w, r, userID, "", "That username can't be used.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update username failed", err, "Unable to update your username.", "/profile")
		return
	}

	// Pick up the new name in the session claims.
	if err := h.SessionMgr.RefreshClaims(w, r); err != nil {
		h.Log.Warn("refresh claims after username change failed", zap.Error(err))
	}

	http.Redirect(w, r, "/profile?notice=Username+updated.", http.StatusSeeOther)
}

// HandleRole handles POST /profile/role. Only available when self role
// changes are enabled in the config.
func (h *Handler) HandleRole(w http.ResponseWriter, r *http.Request) {
	if !h.AllowSelfRoleChange {
		uierrors.RenderForbidden(w, r, "Role changes are managed by an admin.", "/profile")
		return
	}

	user := gates.RequireAuth(w, r, "/login")
	if !user.OK {
		return
	}
	userID := user.UserID

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse role form failed", err, "The form could not be read.", "/profile")
		return
	}
	role := r.PostFormValue("role")
	if !models.ValidRole(role) {
		h.ErrLog.LogBadRequest(w, r, "invalid role value", nil, "That role doesn't exist.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Profiles.UpdateRole(ctx, userID, role); err != nil {
		h.ErrLog.LogServerError(w, r, "self role change failed", err, "Unable to update your role.", "/profile")
		return
	}

	// The role claim lives in the session cookie, so rewrite it now
	// rather than waiting for the next sign-in.
	if err := h.SessionMgr.RefreshClaims(w, r); err != nil {
		h.Log.Warn("refresh claims after role change failed", zap.Error(err))
	}

	h.Log.Info("self role change",
		zap.String("user_id", userID.Hex()),
		zap.String("role", role))

	http.Redirect(w, r, "/profile?notice=Role+updated.", http.StatusSeeOther)
}

func (h *Handler) renderCurrent(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, notice, errMsg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "A database error occurred.", "/")
		return
	}
	h.render(w, r, p, notice, errMsg)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, p *models.Profile, notice, errMsg string) {
	data := pageData{
		BaseVM:        viewdata.NewBaseVM(r, "Your profile", "/"),
		Username:      p.Username,
		Email:         p.Email,
		ProfileRole:   p.Role,
		AuthMethod:    p.AuthMethod,
		CanChangeRole: h.AllowSelfRoleChange,
		Notice:        notice,
		Error:         errMsg,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if recent, err := h.LoginHistory.RecentByProfile(ctx, p.ID, 5); err == nil {
		data.RecentLogins = recent
	} else {
		h.Log.Warn("load login history failed", zap.Error(err), zap.String("profile_id", p.ID.Hex()))
	}
	if errMsg != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	templates.Render(w, r, "profile", data)
}

// internal/app/features/adminusers/handler.go
package adminusers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	profilestore "github.com/cinevote/cinevote/internal/app/store/profiles"
	"github.com/cinevote/cinevote/internal/app/system/authz"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/app/system/viewdata"
	"github.com/cinevote/cinevote/internal/domain/models"
)

// Handler is the admin member list. Role changes made here take effect
// on the target's next sign-in; sessions are not revoked remotely.
type Handler struct {
	Profiles *profilestore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an adminusers Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profilestore.New(db),
		ErrLog:   errLog,
		Log:      logger,
	}
}

type memberVM struct {
	ID         string
	Username   string
	Email      string
	Role       string
	AuthMethod string
	Self       bool
}

type pageData struct {
	viewdata.BaseVM
	Members []memberVM
}

// ServeList handles GET /admin/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profiles, err := h.Profiles.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list profiles failed", err, "A database error occurred.", "/")
		return
	}

	_, _, selfID, _ := authz.UserCtx(r)

	data := pageData{BaseVM: viewdata.NewBaseVM(r, "Members", "/")}
	for _, p := range profiles {
		data.Members = append(data.Members, memberVM{
			ID:         p.ID.Hex(),
			Username:   p.Username,
			Email:      p.Email,
			Role:       p.Role,
			AuthMethod: p.AuthMethod,
			Self:       p.ID == selfID,
		})
	}

	templates.Render(w, r, "admin_users", data)
}

// HandleRole handles POST /admin/users/{profileID}/role.
func (h *Handler) HandleRole(w http.ResponseWriter, r *http.Request) {
	profileID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "profileID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That member doesn't exist.", "/admin/users")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse role form failed", err, "The form could not be read.", "/admin/users")
		return
	}
	role := r.PostFormValue("role")
	if !models.ValidRole(role) {
		h.ErrLog.LogBadRequest(w, r, "invalid role value", nil, "That role doesn't exist.", "/admin/users")
		return
	}

	// An admin demoting themselves would lock everyone out of this page.
	_, _, selfID, _ := authz.UserCtx(r)
	if profileID == selfID && role != models.RoleAdmin {
		uierrors.RenderForbidden(w, r, "You can't remove your own admin role here.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Profiles.UpdateRole(ctx, profileID, role); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "That member doesn't exist.", "/admin/users")
			return
		}
		h.ErrLog.LogServerError(w, r, "update member role failed", err, "Unable to update the member's role.", "/admin/users")
		return
	}

	h.Log.Info("member role changed",
		zap.String("profile_id", profileID.Hex()),
		zap.String("role", role),
		zap.String("changed_by", selfID.Hex()))

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

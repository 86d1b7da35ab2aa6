// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/cinevote/cinevote/internal/app/features/errors"
	"github.com/cinevote/cinevote/internal/app/store/loginhistory"
	profilestore "github.com/cinevote/cinevote/internal/app/store/profiles"
	"github.com/cinevote/cinevote/internal/app/system/auth"
	"github.com/cinevote/cinevote/internal/app/system/authutil"
	"github.com/cinevote/cinevote/internal/app/system/normalize"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/app/system/viewdata"
	"github.com/cinevote/cinevote/internal/domain/models"
)

type Handler struct {
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Profiles      *profilestore.Store
	LoginHistory  *loginhistory.Store
	GoogleEnabled bool
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Profiles:      profilestore.New(db),
		LoginHistory:  loginhistory.New(db),
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	Username      string
	ReturnURL     string
	PasswordRules string
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, signedIn := auth.CurrentUser(r); signedIn {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form failed", err, "The form could not be read.", "/login")
		return
	}

	email := normalize.Email(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	ret := r.PostFormValue("return")

	if email == "" || password == "" {
		h.renderLoginError(w, r, "Enter your email and password.", email, ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same message as a bad password so emails can't be probed.
			h.renderLoginError(w, r, "Incorrect email or password.", email, ret)
			return
		}
		h.ErrLog.LogServerError(w, r, "login lookup failed", err, "A database error occurred.", "/login")
		return
	}

	if p.PasswordHash == "" {
		h.renderLoginError(w, r, "This account signs in with Google.", email, ret)
		return
	}
	if !authutil.CheckPassword(password, p.PasswordHash) {
		h.Log.Info("login rejected", zap.String("email", email))
		h.renderLoginError(w, r, "Incorrect email or password.", email, ret)
		return
	}

	h.createSessionAndRedirect(w, r, p, ret)
}

// ServeSignup handles GET /signup.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	if _, signedIn := auth.CurrentUser(r); signedIn {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Create account", "/login"),
		ReturnURL:     query.Get(r, "return"),
		PasswordRules: authutil.PasswordRules(),
	})
}

// HandleSignupPost handles POST /signup.
func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse signup form failed", err, "The form could not be read.", "/signup")
		return
	}

	email := normalize.Email(r.PostFormValue("email"))
	username := normalize.Username(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	ret := r.PostFormValue("return")

	if email == "" {
		h.renderSignupError(w, r, "Enter an email address.", email, username, ret)
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		h.renderSignupError(w, r, err.Error(), email, username, ret)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Unable to create account.", "/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Profiles.Create(ctx, models.Profile{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		AuthMethod:   models.AuthMethodPassword,
	})
	if err != nil {
		if errors.Is(err, profilestore.ErrDuplicateEmail) {
			h.renderSignupError(w, r, "An account with this email already exists.", email, username, ret)
			return
		}
		h.ErrLog.LogServerError(w, r, "create profile failed", err, "Unable to create account.", "/signup")
		return
	}

	h.Log.Info("account created", zap.String("profile_id", created.ID.Hex()))
	h.createSessionAndRedirect(w, r, &created, ret)
}

// createSessionAndRedirect writes the session claims and redirects to the
// safe return destination.
func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, p *models.Profile, returnURL string) {
	if _, err := h.SessionMgr.GetSession(r); err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			h.Log.Warn("session cookie invalid, using fresh session",
				zap.Error(err), zap.String("profile_id", p.ID.Hex()))
		} else {
			h.Log.Error("session store error during login, using fresh session",
				zap.Error(err), zap.String("profile_id", p.ID.Hex()))
		}
	}

	err := h.SessionMgr.Establish(w, r, &auth.SessionUser{
		ID:       p.ID.Hex(),
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
	})
	if err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", p.Email))
		h.renderLoginError(w, r, "Unable to create session. Please try again.", p.Email, returnURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.LoginHistory.Record(ctx, p.ID, models.AuthMethodPassword, clientIP(r)); err != nil {
		h.Log.Warn("record login failed", zap.Error(err), zap.String("profile_id", p.ID.Hex()))
	}

	dest := urlutil.SafeReturn(returnURL, "", "/")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// clientIP strips the port from RemoteAddr; proxies are expected to be
// handled by WAFFLE's RealIP middleware upstream.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, msg, email, ret string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}

func (h *Handler) renderSignupError(w http.ResponseWriter, r *http.Request, msg, email, username, ret string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Create account", "/login"),
		Error:         msg,
		Email:         email,
		Username:      username,
		ReturnURL:     ret,
		PasswordRules: authutil.PasswordRules(),
	})
}

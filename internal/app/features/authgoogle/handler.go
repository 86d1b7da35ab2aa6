// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/cinevote/cinevote/internal/app/store/loginhistory"
	"github.com/cinevote/cinevote/internal/app/store/oauthstate"
	profilestore "github.com/cinevote/cinevote/internal/app/store/profiles"
	"github.com/cinevote/cinevote/internal/app/system/auth"
	"github.com/cinevote/cinevote/internal/app/system/timeouts"
	"github.com/cinevote/cinevote/internal/domain/models"
)

// Handler handles Google OAuth authentication. Unlike password accounts,
// a Google sign-in provisions the profile lazily on first login.
type Handler struct {
	Log          *zap.Logger
	SessionMgr   *auth.SessionManager
	Profiles     *profilestore.Store
	StateStore   *oauthstate.Store
	LoginHistory *loginhistory.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, stateStore *oauthstate.Store, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		Profiles:     profilestore.New(db),
		StateStore:   stateStore,
		LoginHistory: loginhistory.New(db),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured reports whether Google OAuth credentials are present.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google/login: generates a state token and
// redirects to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates the state,
// exchanges the code, fetches the Google identity, and provisions or loads
// the matching profile.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}
	if googleUser.Email == "" {
		h.Log.Warn("Google user info has no email", zap.String("google_id", googleUser.ID))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	p, err := h.Profiles.EnsureProfile(ctxTimeout, googleUser.Email, googleUser.ID)
	if err != nil {
		h.Log.Error("failed to provision profile", zap.Error(err),
			zap.String("email", googleUser.Email))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	err = h.SessionMgr.Establish(w, r, &auth.SessionUser{
		ID:       p.ID.Hex(),
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
	})
	if err != nil {
		h.Log.Error("save session failed after OAuth", zap.Error(err),
			zap.String("profile_id", p.ID.Hex()))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if err := h.LoginHistory.Record(ctxTimeout, p.ID, models.AuthMethodGoogle, clientIP(r)); err != nil {
		h.Log.Warn("record login failed", zap.Error(err), zap.String("profile_id", p.ID.Hex()))
	}

	dest := urlutil.SafeReturn(returnURL, "", "/")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

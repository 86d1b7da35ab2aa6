// Package auth manages cookie sessions and the role claim they carry.
//
// The session cookie stores a small set of claims (user id, username,
// email, role) written at login. Claims are NOT re-read from the database
// on every request: the role claim is eventually consistent. A user's own
// role changes take effect immediately because the mutating handler calls
// RefreshClaims; an admin changing someone ELSE's role cannot reach into
// that user's cookie, so the target sees the new role on their next login
// or claim refresh.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
	userRoleKey  = "user_role"
)

// SessionUser is the claim set cached in the session cookie and injected
// into r.Context() by LoadSessionUser.
type SessionUser struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// ProfileFetcher loads fresh claim data for a user id. Implemented by the
// profile store; used by RefreshClaims after a role mutation.
type ProfileFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher ProfileFetcher
}

// NewSessionManager initializes a cookie session store using the provided
// signing key and cookie settings.
//
// In production (secure=true) cookies are Secure + SameSite=None so they
// survive cross-site contexts over HTTPS. In local dev over http://localhost
// use secure=false so the browser accepts them.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: sessionName, log: logger}, nil
}

// Store exposes the underlying cookie store (logout needs its options to
// build a matching deletion cookie).
func (m *SessionManager) Store() *sessions.CookieStore {
	return m.store
}

// SetProfileFetcher wires the profile store in so RefreshClaims can re-read
// the caller's row. Call once from bootstrap.
func (m *SessionManager) SetProfileFetcher(f ProfileFetcher) {
	m.fetcher = f
}

// GetSession returns the request's session, or a fresh one if the cookie
// is missing or fails to decode.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// Establish writes the user's claims into the session cookie. Called after
// a successful login or signup.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, err := m.GetSession(r)
	if err != nil {
		// Decode failure means a stale or tampered cookie; start fresh.
		m.log.Warn("session decode failed, establishing fresh session", zap.Error(err))
	}

	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Username
	sess.Values[userEmailKey] = u.Email
	sess.Values[userRoleKey] = u.Role

	return sess.Save(r, w)
}

// RefreshClaims re-reads the signed-in user's profile and rewrites the
// session claims. Handlers that mutate the caller's own role call this so
// the new role takes effect on the very next request.
func (m *SessionManager) RefreshClaims(w http.ResponseWriter, r *http.Request) error {
	u, ok := CurrentUser(r)
	if !ok {
		return fmt.Errorf("no signed-in user to refresh")
	}
	if m.fetcher == nil {
		return fmt.Errorf("no profile fetcher configured")
	}
	fresh := m.fetcher.FetchUser(r.Context(), u.ID)
	if fresh == nil {
		return fmt.Errorf("profile %s not found during claim refresh", u.ID)
	}
	return m.Establish(w, r, fresh)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during clear", zap.Error(err))
	}

	// The deletion cookie must match the original store settings or the
	// browser keeps the old one.
	if opts := m.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1

	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-user context                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the session user from request context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a session user directly into the request context,
// bypassing the cookie. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the session claims into context if the request
// carries an authenticated session. It reads only the cookie - no database
// round trip per request.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.GetSession(r)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:       getString(sess, userIDKey),
				Username: getString(sess, userNameKey),
				Email:    getString(sess, userEmailKey),
				Role:     getString(sess, userRoleKey),
			}
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r)
	})
}

// RequireRole ensures there is a user with one of the allowed roles in
// context. Role comparison uses the session claim, not a live database
// read; see the package comment for the staleness consequences.
func (m *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			if _, has := set[strings.ToLower(u.Role)]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}

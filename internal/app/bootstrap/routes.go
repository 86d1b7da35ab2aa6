// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	adminusersfeature "github.com/cinevote/cinevote/internal/app/features/adminusers"
	authgooglefeature "github.com/cinevote/cinevote/internal/app/features/authgoogle"
	cyclesfeature "github.com/cinevote/cinevote/internal/app/features/cycles"
	errorsfeature "github.com/cinevote/cinevote/internal/app/features/errors"
	healthfeature "github.com/cinevote/cinevote/internal/app/features/health"
	homefeature "github.com/cinevote/cinevote/internal/app/features/home"
	loginfeature "github.com/cinevote/cinevote/internal/app/features/login"
	logoutfeature "github.com/cinevote/cinevote/internal/app/features/logout"
	moviesfeature "github.com/cinevote/cinevote/internal/app/features/movies"
	profilefeature "github.com/cinevote/cinevote/internal/app/features/profile"
	suggestionsfeature "github.com/cinevote/cinevote/internal/app/features/suggestions"
	votesfeature "github.com/cinevote/cinevote/internal/app/features/votes"
	"github.com/cinevote/cinevote/internal/app/store/oauthstate"
	profilestore "github.com/cinevote/cinevote/internal/app/store/profiles"
	"github.com/cinevote/cinevote/internal/app/system/auth"
	"github.com/cinevote/cinevote/internal/tmdb"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	profiles := profilestore.New(deps.MongoDatabase)

	// Claims live in the session cookie; the fetcher is only consulted
	// when a handler asks for an explicit refresh.
	sessionMgr.SetProfileFetcher(profilestore.NewFetcher(profiles))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	// The movie catalog client. The base URL override exists for tests
	// and proxies; empty means the real TMDB API.
	var catalog *tmdb.Client
	if appCfg.TMDBBaseURL != "" {
		catalog = tmdb.NewWithBaseURL(appCfg.TMDBAPIKey, appCfg.TMDBBaseURL, logger)
	} else {
		catalog = tmdb.New(appCfg.TMDBAPIKey, logger)
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the session claims into context so
	// handlers can read them via auth.CurrentUser / authz.UserCtx.
	r.Use(sessionMgr.LoadSessionUser)

	// Every form in the app posts with a CSRF token.
	r.Use(csrf.Protect(
		[]byte(appCfg.SessionKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Get("/", homeHandler.Serve)

	// Authentication
	googleEnabled := appCfg.GoogleClientID != ""
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, googleEnabled, logger)
	loginfeature.Routes(r, loginHandler)

	if googleEnabled {
		stateStore := oauthstate.New(deps.MongoDatabase)
		googleHandler := authgooglefeature.NewHandler(deps.MongoDatabase, sessionMgr, stateStore,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	// Movie catalog browsing
	moviesHandler := moviesfeature.NewHandler(deps.MongoDatabase, catalog, errLog, logger)
	r.Mount("/movies", moviesfeature.Routes(moviesHandler, sessionMgr))

	// Voting cycles
	cyclesHandler := cyclesfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/cycles", cyclesfeature.Routes(cyclesHandler, sessionMgr))

	// Suggestions and votes
	suggestionsHandler := suggestionsfeature.NewHandler(deps.MongoDatabase, catalog, errLog, logger)
	r.Mount("/suggestions", suggestionsfeature.Routes(suggestionsHandler))

	votesHandler := votesfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/votes", votesfeature.Routes(votesHandler))

	// Profile and member administration
	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, appCfg.AllowSelfRoleChange, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	adminUsersHandler := adminusersfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/admin/users", adminusersfeature.Routes(adminUsersHandler, sessionMgr))

	return r, nil
}

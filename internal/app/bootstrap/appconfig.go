// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, CORS, and request size limits.
// AppConfig is where everything specific to CineVote lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: cinevote-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Movie catalog (TMDB) configuration
	TMDBAPIKey  string // TMDB API key; required, the catalog pages don't work without it
	TMDBBaseURL string // Override for the TMDB API base URL (tests and proxies)

	// Google OAuth configuration. Both values blank disables the
	// "Sign in with Google" path entirely.
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://cinevote.example.com")
	BaseURL string

	// AllowSelfRoleChange exposes a role picker on the profile page so
	// anyone can promote themselves to admin. Demo deployments only.
	AllowSelfRoleChange bool
}

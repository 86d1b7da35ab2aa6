// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/cinevote/cinevote/internal/app/resources"
	"github.com/cinevote/cinevote/internal/app/store/oauthstate"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	// The TTL index reaps expired OAuth states on its own schedule; a
	// sweep at boot just keeps a long-stopped instance from carrying
	// stale rows into its first requests.
	if n, err := oauthstate.New(deps.MongoDatabase).CleanupExpired(ctx); err != nil {
		logger.Warn("oauth state cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("removed expired oauth states", zap.Int64("count", n))
	}

	return nil
}

package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/database"
	"github.com/ghuser/pantry/pkg/events"
	"github.com/ghuser/pantry/pkg/logger"
	"github.com/ghuser/pantry/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to every bounded context's Routes call during server initialization
// and to the consumers registered by the worker.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "shopping list recomputed", "user_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient // nil unless TEMPORAL_ENABLED
	SessionStore   sessions.Store            // nil in worker process
	Tokens         *auth.TokenIssuer
	Passwords      *auth.PasswordHasher
}

// IsProduction reports whether the process runs with ENVIRONMENT=production.
func (a *Application) IsProduction() bool {
	return a.Config != nil && a.Config.Environment == config.EnvProduction
}

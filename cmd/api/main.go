package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/pantry/docs/swagger"
	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/database"
	"github.com/ghuser/pantry/pkg/errhttp"
	"github.com/ghuser/pantry/pkg/events"
	"github.com/ghuser/pantry/pkg/httpx"
	"github.com/ghuser/pantry/pkg/logger"
	"github.com/ghuser/pantry/pkg/telemetry"
	"github.com/ghuser/pantry/pkg/workflows"
	itemApi "github.com/ghuser/pantry/services/item/application/api"
	itemsvcs "github.com/ghuser/pantry/services/item/application/services"
	recipeApi "github.com/ghuser/pantry/services/recipe/application/api"
	recipesvcs "github.com/ghuser/pantry/services/recipe/application/services"
	userApi "github.com/ghuser/pantry/services/user/application/api"
	usersvcs "github.com/ghuser/pantry/services/user/application/services"
	userpostgres "github.com/ghuser/pantry/services/user/infrastructure/persistence/postgres"
	"github.com/ghuser/pantry/services/user/infrastructure/recipes"
)

// @title						Pantry API
// @version					1.0
// @description				Recipes, weekly menus and aggregated shopping lists.
// @license.name				MIT
// @license.url				https://opensource.org/licenses/MIT
// @host						localhost:8080
// @BasePath					/api
// @schemes					http https
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	errhttp.SetProduction(cfg.Environment == config.EnvProduction)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting is optional: log and continue on failure.
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, cfg.TemporalTaskQueue, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer temporalClient.Close()
	}

	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:        cfg.ServiceName,
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
		cfg.RefreshTokenTTL,
	)
	log.Info("session store initialized", "backend", "redis")

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		SessionStore:   sessionStore,
		Tokens:         tokens,
		Passwords:      auth.NewPasswordHasher(cfg.BcryptCost),
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Tracing:  otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(log),
		},
	)

	checks := []httpx.HealthCheck{
		{Name: "database", Checker: pool},
		{Name: "redis", Checker: redisClient},
		{Name: "event_bus", Checker: eventBus},
	}
	if temporalClient != nil {
		checks = append(checks, httpx.HealthCheck{Name: "temporal", Checker: temporalClient})
	}
	r.Get("/health", httpx.HealthHandler(checks...))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes wires the bounded contexts together and mounts their routes
// under /api. The user context reads recipes through the recipe service, and
// the recipe context reads creator usernames from the user repository.
func registerRoutes(r chi.Router, a *app.Application) {
	userRepo := userpostgres.NewUserRepository(a.Db)

	itemSvcs := itemsvcs.New(a)
	recipeSvcs := recipesvcs.New(a, userRepo)
	userSvcs := usersvcs.New(a, userRepo, recipes.NewLookup(recipeSvcs.Recipe))

	itemApi.ItemRoutes(r, a, itemSvcs)
	recipeApi.RecipeRoutes(r, a, recipeSvcs)
	userApi.UserRoutes(r, a, userSvcs)
}

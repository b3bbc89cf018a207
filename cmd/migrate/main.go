package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/pantry/migrations/item"
	"github.com/ghuser/pantry/migrations/recipe"
	"github.com/ghuser/pantry/migrations/user"
	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/logger"
	"github.com/ghuser/pantry/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Items first: recipes and menus reference item ids.
	err = migrator.Up(ctx, cfg.DefinitionDatabaseURL, log,
		migrator.Set{Context: item.Context, FS: item.FS},
		migrator.Set{Context: recipe.Context, FS: recipe.FS},
		migrator.Set{Context: user.Context, FS: user.FS},
	)
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1) //nolint:gocritic // stop() is best-effort on failure
	}
}

// Package migrator applies each bounded context's embedded goose migrations.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ghuser/pantry/pkg/logger"
)

// Set is one context's migrations. Each context keeps its own
// goose_<name>_version table, so versions may number from 1 independently.
type Set struct {
	Context string
	FS      fs.FS
}

// Up opens dbURL and applies every pending migration of each set, in the
// order given.
func Up(ctx context.Context, dbURL string, log logger.Logger, sets ...Set) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetLogger(gooseLogger{log: log})

	for _, s := range sets {
		if err := up(ctx, db, s); err != nil {
			return err
		}
		version, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read %s version: %w", s.Context, err)
		}
		log.InfoContext(ctx, "migrations applied", "context", s.Context, "version", version)
	}
	return nil
}

// goose keeps its base FS and table name in package state, so sets are
// applied one after the other.
func up(ctx context.Context, db *sql.DB, s Set) error {
	goose.SetBaseFS(s.FS)
	goose.SetTableName(VersionTable(s.Context))
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("up %s migrations: %w", s.Context, err)
	}
	return nil
}

// VersionTable returns the goose bookkeeping table for a bounded context.
func VersionTable(context string) string {
	return "goose_" + context + "_version"
}

type gooseLogger struct{ log logger.Logger }

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

// Command migrate runs schema operations for the Chirp database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func usage() error {
	return fmt.Errorf("usage: migrate <up|auto|status|down> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	log := middleware.Logger
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Info("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Info("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Info("schema status",
			slog.String("mode", status.Mode),
			slog.String("env", status.Environment),
			slog.Bool("run_sql", status.WillRunSQL),
			slog.Bool("run_auto", status.WillRunAutoMigrate),
			slog.Int("applied", len(status.AppliedVersions)),
			slog.Int("pending", len(status.PendingMigrations)),
			slog.Bool("up_to_date", status.UpToDate()))
		for _, m := range status.PendingMigrations {
			log.Info("pending migration", slog.String("migration", m.String()))
		}
		for _, v := range status.UnknownVersions {
			log.Warn("applied migration unknown to this binary", slog.Int("version", v))
		}
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Info("rolled back migration", slog.Int("version", version))
	default:
		return usage()
	}

	return nil
}

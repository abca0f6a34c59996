// Command seed fills the database with demo data.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/seed"
)

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	numUsers := flag.Int("users", 0, "Override the number of users to create")
	numPosts := flag.Int("posts", 0, "Override the number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "Default", "Built-in preset ("+strings.Join(seed.PresetNames(), ", ")+") or path to a YAML preset")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing to the database")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded accounts will not be able to log in")
	flag.Parse()

	p, err := seed.ResolvePreset(*preset)
	if err != nil {
		return err
	}
	if *numUsers > 0 {
		p.Users = *numUsers
	}
	if *numPosts > 0 {
		p.Posts = *numPosts
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to seed a %s database", cfg.Env)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *fast, DryRun: *dryRun})
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}

	if _, err := s.ApplyPreset(p); err != nil {
		return err
	}

	if !*fast {
		middleware.Logger.Info("Seeded accounts share one password", slog.String("password", seed.DefaultPassword))
	}
	return nil
}

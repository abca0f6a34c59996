// Package bootstrap wires the process-wide runtime: database, Redis and the
// optional development data.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chirp/internal/auth"
	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	defaultRootUsername = "chirp_root"
	defaultRootEmail    = "root@chirp.local"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset, when set, seeds an empty database with the named preset.
	SeedPreset string
}

// InitRuntime connects to DB and Redis, bootstraps the development root
// account and optionally seeds demo data. A nil Redis client means Redis was
// unreachable; the server runs degraded without it.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db, auth.BcryptHasher{}); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedPreset != "" {
		if err := seedIfEmpty(db, opts.SeedPreset); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// seedIfEmpty applies preset only when no post exists yet, so restarts do not
// duplicate demo content.
func seedIfEmpty(db *gorm.DB, preset string) error {
	var posts int64
	if err := db.Model(&models.Post{}).Count(&posts).Error; err != nil {
		return err
	}
	if posts > 0 {
		middleware.Logger.Info("Skipping demo seed, database already has content", slog.Int64("posts", posts))
		return nil
	}

	p, err := seed.ResolvePreset(preset)
	if err != nil {
		return err
	}
	_, err = seed.NewSeeder(db, seed.Options{}).ApplyPreset(p)
	return err
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB, hasher passwordHasher) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.ToLower(strings.TrimSpace(cfg.DevRootUsername))
	if username == "" {
		username = defaultRootUsername
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = defaultRootEmail
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.First(&root, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				ID:          1,
				Username:    username,
				Email:       email,
				Password:    hashedPassword,
				DisplayName: "Chirp Root",
				Membership:  models.MembershipPremium,
				IsAdmin:     true,
				IsActive:    true,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{"is_admin": true, "is_active": true}
			if cfg.DevRootForceCredentials {
				updates["username"] = username
				updates["email"] = email
				updates["password"] = hashedPassword
			}
			if err := tx.Model(&models.User{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
				return err
			}
		}

		// Explicit ID insertion leaves the PostgreSQL sequence behind.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset users sequence: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	middleware.Logger.Info("Development root admin ensured",
		slog.Uint64("user_id", 1),
		slog.String("email", email))
	return nil
}

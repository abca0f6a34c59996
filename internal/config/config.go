// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret                     string  `mapstructure:"JWT_SECRET"`
	JWTTTLHours                   int     `mapstructure:"JWT_TTL_HOURS"`
	Port                          string  `mapstructure:"PORT"`
	DBHost                        string  `mapstructure:"DB_HOST"`
	DBPort                        string  `mapstructure:"DB_PORT"`
	DBUser                        string  `mapstructure:"DB_USER"`
	DBPassword                    string  `mapstructure:"DB_PASSWORD"`
	DBName                        string  `mapstructure:"DB_NAME"`
	DBSSLMode                     string  `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns                int     `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int     `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int     `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode                  string  `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool    `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	RedisURL                      string  `mapstructure:"REDIS_URL"`
	AllowedOrigins                string  `mapstructure:"ALLOWED_ORIGINS"`
	Env                           string  `mapstructure:"APP_ENV"`
	TracingEnabled                bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter               string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint                  string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio            float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
	DevBootstrapRoot              bool    `mapstructure:"DEV_BOOTSTRAP_ROOT"`
	DevRootUsername               string  `mapstructure:"DEV_ROOT_USERNAME"`
	DevRootEmail                  string  `mapstructure:"DEV_ROOT_EMAIL"`
	DevRootPassword               string  `mapstructure:"DEV_ROOT_PASSWORD"`
	DevRootForceCredentials       bool    `mapstructure:"DEV_ROOT_FORCE_CREDENTIALS"`
	LogLevel                      string  `mapstructure:"LOG_LEVEL"`
	SeedPreset                    string  `mapstructure:"SEED_PRESET"`
	FeatureFlags                  string  `mapstructure:"FEATURE_FLAGS"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "chirp")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_TTL_HOURS", 24*7)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("DEV_BOOTSTRAP_ROOT", false)
	viper.SetDefault("DEV_ROOT_USERNAME", "")
	viper.SetDefault("DEV_ROOT_EMAIL", "")
	viper.SetDefault("DEV_ROOT_PASSWORD", "")
	viper.SetDefault("DEV_ROOT_FORCE_CREDENTIALS", false)
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SEED_PRESET", "")
	viper.SetDefault("FEATURE_FLAGS", "legacy_aliases=on")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
}

// IsProduction reports whether the environment is a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTLHours < 0 {
		return errors.New("JWT_TTL_HOURS must not be negative")
	}
	if c.DBConnMaxLifetimeMinutes < 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must not be negative")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.SeedPreset != "" {
			return errors.New("SEED_PRESET must not be set in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		// Development/Test warnings
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}

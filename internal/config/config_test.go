package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		Port:                     "8080",
		JWTTTLHours:              24,
		DBConnMaxLifetimeMinutes: 1,
		TracingSampleRatio:       1,
		RedisURL:                 "redis://localhost:6379",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with disable SSL mode", "prod", "disable", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.DBSSLMode = "require"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c.JWTSecret = "secure-secret-at-least-32-chars-long"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())

	c.DBPassword = "a-much-better-password"
	assert.NoError(t, c.Validate())

	c.SeedPreset = "Default"
	assert.ErrorContains(t, c.Validate(), "SEED_PRESET")
}

func TestConfig_ValidateRanges(t *testing.T) {
	c := validConfig()
	c.TracingSampleRatio = 1.5
	assert.Error(t, c.Validate())

	c = validConfig()
	c.JWTTTLHours = -1
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Port = ""
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	// Clean up environment variables and viper after test
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("DB_SCHEMA_MODE")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("DB_SCHEMA_MODE", " SQL ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sql", c.DBSchemaMode)
	assert.Equal(t, 24*7, c.JWTTTLHours)
	assert.False(t, c.IsProduction())
}

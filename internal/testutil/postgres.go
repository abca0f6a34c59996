//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"chirp/internal/config"
	"chirp/internal/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// StartPostgres runs a throwaway PostgreSQL container and returns a config
// pointing at it. The test is skipped when docker is unavailable.
func StartPostgres(t *testing.T) *config.Config {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "chirp",
			"POSTGRES_PASSWORD": "chirp",
			"POSTGRES_DB":       "chirp_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &config.Config{
		DBHost:         host,
		DBPort:         port.Port(),
		DBUser:         "chirp",
		DBPassword:     "chirp",
		DBName:         "chirp_test",
		DBSSLMode:      "disable",
		DBMaxOpenConns: 32,
		Env:            "test",
		DBSchemaMode:   database.SchemaModeSQL,
	}
}

// NewPostgresDB starts a container and applies the SQL migrations to it.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := StartPostgres(t)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

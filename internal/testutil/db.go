// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"chirp/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Uint64

// NewTestDB opens a private in-memory SQLite database with the full schema
// migrated. A single connection serializes transactions the way row locks
// would on Postgres.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, "")
}

// NewStrictTestDB is NewTestDB with foreign keys enforced, so cascades and
// dangling references behave as they do on Postgres.
func NewStrictTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, "&_foreign_keys=1")
}

func openTestDB(t *testing.T, params string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:chirp_test_%d?mode=memory&cache=shared%s", dbSeq.Add(1), params)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

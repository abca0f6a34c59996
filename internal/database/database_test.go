package database

import (
	"strings"
	"testing"
	"testing/fstest"

	"chirp/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	// Zero values fall back to defaults.
	require.NoError(t, configurePool(db, &config.Config{}))
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.Config{
		DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "chirp",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=chirp sslmode=disable", dsn)

	dsn = DSN(&config.Config{DBSSLMode: "require"})
	assert.True(t, strings.HasSuffix(dsn, "sslmode=require"))
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "000001_init", all[0].String())
	assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS comment_likes")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS users")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))

	integrity := GetMigrationByVersion(2)
	require.NotNil(t, integrity)
	assert.Equal(t, "000002_thread_integrity", integrity.String())
	assert.Contains(t, integrity.UpScript, "fk_comments_parent FOREIGN KEY (parent_id) REFERENCES comments (id) ON DELETE CASCADE")
	assert.Contains(t, integrity.UpScript, "fk_post_likes_post FOREIGN KEY (post_id) REFERENCES posts (id) ON DELETE CASCADE")
	assert.Contains(t, integrity.UpScript, "fk_comment_likes_comment FOREIGN KEY (comment_id) REFERENCES comments (id) ON DELETE CASCADE")
	assert.Contains(t, integrity.DownScript, "DROP CONSTRAINT IF EXISTS fk_comments_parent")
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"m/000002_second.down.sql": {Data: []byte("SELECT -2;")},
		"m/000001_first.up.sql":    {Data: []byte("SELECT 1;")},
		"m/000001_first.down.sql":  {Data: []byte("SELECT -1;")},
		"m/bogus.up.sql":           {Data: []byte("SELECT 0;")},
		"m/README.md":              {Data: []byte("docs")},
	}

	loaded, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "first", loaded[0].Name)
	assert.Equal(t, "SELECT -2;", loaded[1].DownScript)

	t.Run("missing down script", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"m/000001_first.up.sql": {Data: []byte("SELECT 1;")},
		}, "m")
		assert.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_a.down.sql": {Data: []byte("SELECT 1;")},
			"m/000001_b.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_b.down.sql": {Data: []byte("SELECT 1;")},
		}, "m")
		assert.Error(t, err)
	})
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 3}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000003, 000007")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		wantSQL     bool
		wantAuto    bool
		expectError bool
	}{
		{"hybrid default in development", config.Config{Env: "development"}, true, true, false},
		{"hybrid in production skips automigrate", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "SQL"}, true, false, false},
		{"auto in development", config.Config{Env: "development", DBSchemaMode: "auto"}, false, true, false},
		{"auto refused in staging", config.Config{Env: "staging", DBSchemaMode: "auto"}, false, false, true},
		{"auto allowed when destructive opted in", config.Config{Env: "prod", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"unknown mode", config.Config{DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestApplySchema_AutoOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// Each sqlite :memory: connection is its own database.
	require.NoError(t, configurePool(db, &config.Config{DBMaxOpenConns: 1}))

	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}
	require.NoError(t, ApplySchema(t.Context(), db, cfg))
	assert.True(t, db.Migrator().HasTable("follows"))

	status, err := GetSchemaStatus(t.Context(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.UpToDate())
}

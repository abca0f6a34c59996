package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"chirp/internal/models"
	"chirp/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_StorageFailuresAreWrapped(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT users\.\*`).WillReturnError(errors.New("dial tcp: connection refused"))
	_, err := repo.GetByID(ctx, 1)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeStorageUnavailable))

	mock.ExpectQuery(`SELECT users\.\*`).WillReturnError(errors.New("dial tcp: connection refused"))
	_, err = repo.GetByEmail(ctx, "a@b.co")
	assert.True(t, models.IsCode(err, models.CodeStorageUnavailable))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_NotFoundMapping(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT users\.\*.*FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(99, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := repo.GetByID(ctx, 99)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	mock.ExpectQuery(`SELECT users\.\*.*users\.username = \$1`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	user, err := repo.GetByUsername(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.username")))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(errors.New("timeout")))
	assert.False(t, isUniqueViolation(nil))
}

func TestUserRepository_CreateConflict(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Username: "alice", Email: "alice@example.com", Password: "h", DisplayName: "Alice"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.User{Username: "alice", Email: "other@example.com", Password: "h", DisplayName: "Alice"}
	err := repo.Create(ctx, dup)
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db)

	byHandle, err := repo.GetByHandleOrEmail(ctx, u.Username)
	require.NoError(t, err)
	require.NotNil(t, byHandle)
	assert.Equal(t, u.ID, byHandle.ID)

	byEmail, err := repo.GetByHandleOrEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	none, err := repo.GetByHandleOrEmail(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserRepository_UpdateAndLastLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db)
	u.Bio = "hello"
	u.IsActive = false
	u.Username = "should_not_change"
	require.NoError(t, repo.Update(ctx, u))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.TouchLastLogin(ctx, u.ID, at))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)
	assert.False(t, got.IsActive)
	assert.NotEqual(t, "should_not_change", got.Username)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(got.LastLoginAt.UTC()))
}

func TestUserRepository_FollowGraph(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)
	carol := testutil.CreateUser(t, db)

	require.NoError(t, repo.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.Follow(ctx, carol.ID, alice.ID))

	followers, err := repo.ListFollowers(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := repo.ListFollowing(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, alice.ID, following[0].ID)

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FollowersCount)
	assert.Equal(t, 0, got.FollowingCount)

	require.NoError(t, repo.Unfollow(ctx, bob.ID, alice.ID))
	followers, err = repo.ListFollowers(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, followers, 1)
}

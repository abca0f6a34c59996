package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"chirp/internal/auth"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainHasher keeps tests fast; it "hashes" by prefixing.
type plainHasher struct{}

func (plainHasher) Hash(raw string) (string, error) { return "hashed:" + raw, nil }
func (plainHasher) Compare(hash, raw string) error {
	if hash != "hashed:"+raw {
		return auth.ErrPasswordMismatch
	}
	return nil
}

func newUserService(t *testing.T) (*UserService, repository.UserRepository) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := repository.NewUserRepository(db)
	return NewUserService(repo, plainHasher{}), repo
}

func register(t *testing.T, svc *UserService, username string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "secret1",
		DisplayName: "Test " + username,
	})
	require.NoError(t, err)
	return user
}

func TestUserService_Register_NormalizesAndConflicts(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username:    "  Alice_01 ",
		Email:       "Alice@Example.COM",
		Password:    "secret1",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_01", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashed:secret1", user.Password)
	assert.Equal(t, models.MembershipBasic, user.Membership)

	_, err = svc.Register(ctx, RegisterInput{Username: "ALICE_01", Email: "other@example.com", Password: "secret1"})
	assertCode(t, err, models.CodeConflict)

	_, err = svc.Register(ctx, RegisterInput{Username: "someone", Email: "ALICE@example.com", Password: "secret1"})
	assertCode(t, err, models.CodeConflict)
}

func TestUserService_Register_Validation(t *testing.T) {
	svc, _ := newUserService(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short handle", RegisterInput{Username: "abc", Email: "a@b.co", Password: "secret1"}},
		{"bad handle chars", RegisterInput{Username: "bad-handle", Email: "a@b.co", Password: "secret1"}},
		{"bad email", RegisterInput{Username: "gooduser", Email: "nope", Password: "secret1"}},
		{"short password", RegisterInput{Username: "gooduser", Email: "a@b.co", Password: "12345"}},
		{"short display name", RegisterInput{Username: "gooduser", Email: "a@b.co", Password: "secret1", DisplayName: "ab"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_VerifyCredential(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	user := register(t, svc, "bobby")

	got, err := svc.VerifyCredential(ctx, "BOBBY", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(fixed))

	got, err = svc.VerifyCredential(ctx, "bobby@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.VerifyCredential(ctx, "bobby", "wrong")
	assertUnauthorizedError(t, err)
	_, err = svc.VerifyCredential(ctx, "nobody", "secret1")
	assertUnauthorizedError(t, err)

	require.NoError(t, svc.Deactivate(ctx, user.Actor(), user.ID))
	_, err = svc.VerifyCredential(ctx, "bobby", "secret1")
	assertUnauthorizedError(t, err)

	_, err = svc.ResolveActor(ctx, user.ID)
	assertUnauthorizedError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	carol := register(t, svc, "carol")
	dave := register(t, svc, "dave")

	bio := strings.Repeat("b", 320)
	site := "https://carol.dev"
	updated, err := svc.UpdateProfile(ctx, carol.Actor(), UpdateProfileInput{UserID: carol.ID, Bio: &bio, Website: &site})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, site, updated.Website)
	assert.Equal(t, "Test carol", updated.DisplayName)

	tooLong := bio + "!"
	_, err = svc.UpdateProfile(ctx, carol.Actor(), UpdateProfileInput{UserID: carol.ID, Bio: &tooLong})
	assertValidationError(t, err)

	badURL := "javascript:alert(1)"
	_, err = svc.UpdateProfile(ctx, carol.Actor(), UpdateProfileInput{UserID: carol.ID, AvatarURL: &badURL})
	assertValidationError(t, err)

	name := "Dave Was Here"
	_, err = svc.UpdateProfile(ctx, dave.Actor(), UpdateProfileInput{UserID: carol.ID, DisplayName: &name})
	assertForbiddenError(t, err)

	premium := models.MembershipPremium
	_, err = svc.UpdateProfile(ctx, carol.Actor(), UpdateProfileInput{UserID: carol.ID, Membership: &premium})
	assertForbiddenError(t, err)

	admin := models.Actor{ID: dave.ID, Privileged: true}
	updated, err = svc.UpdateProfile(ctx, admin, UpdateProfileInput{UserID: carol.ID, Membership: &premium})
	require.NoError(t, err)
	assert.Equal(t, models.MembershipPremium, updated.Membership)
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()
	erin := register(t, svc, "erin")

	err := svc.ChangePassword(ctx, erin.Actor(), "wrong", "newsecret")
	assertUnauthorizedError(t, err)

	err = svc.ChangePassword(ctx, erin.Actor(), "secret1", "123")
	assertValidationError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, erin.Actor(), "secret1", "newsecret"))
	stored, err := repo.GetByID(ctx, erin.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:newsecret", stored.Password)
}

func TestUserService_FollowGraph(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	frank := register(t, svc, "frank")
	grace := register(t, svc, "grace")

	err := svc.Follow(ctx, frank.Actor(), frank.ID)
	assertValidationError(t, err)

	err = svc.Follow(ctx, frank.Actor(), 9999)
	assertCode(t, err, models.CodeNotFound)

	require.NoError(t, svc.Follow(ctx, frank.Actor(), grace.ID))
	require.NoError(t, svc.Follow(ctx, frank.Actor(), grace.ID))

	followers, err := svc.Followers(ctx, grace.ID, Page{})
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, frank.ID, followers[0].ID)

	following, err := svc.Following(ctx, frank.ID, Page{})
	require.NoError(t, err)
	require.Len(t, following, 1)

	profile, err := svc.FindByID(ctx, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FollowersCount)

	require.NoError(t, svc.Unfollow(ctx, frank.Actor(), grace.ID))
	followers, err = svc.Followers(ctx, grace.ID, Page{})
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestUserService_FindByHandleOrEmail(t *testing.T) {
	svc, _ := newUserService(t)
	henry := register(t, svc, "henry")

	got, err := svc.FindByHandleOrEmail(context.Background(), " HENRY ")
	require.NoError(t, err)
	assert.Equal(t, henry.ID, got.ID)

	_, err = svc.FindByHandleOrEmail(context.Background(), "ghost")
	assertCode(t, err, models.CodeNotFound)
}

func TestNewUserService_DefaultsToBcrypt(t *testing.T) {
	svc := NewUserService(nil, nil)
	_, ok := svc.hasher.(auth.BcryptHasher)
	assert.True(t, ok)
}

package repository

import (
	"context"
	"errors"
	"time"

	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByHandleOrEmail(ctx context.Context, value string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

const userSelect = "users.*, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) AS followers_count, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count"

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get", "users")()
	var user models.User
	if err := r.db.WithContext(ctx).Select(userSelect).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the given email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "users.email = ?", email)
}

// GetByUsername returns nil, nil when no user has the given username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "users.username = ?", username)
}

// GetByHandleOrEmail matches either column; callers normalize value first.
func (r *userRepository) GetByHandleOrEmail(ctx context.Context, value string) (*models.User, error) {
	return r.findOne(ctx, "users.username = ? OR users.email = ?", value, value)
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	defer observability.TrackQuery("find", "users")()
	var user models.User
	if err := r.db.WithContext(ctx).Select(userSelect).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("User already exists")
		}
		return storageError(err)
	}
	return nil
}

// Update writes the mutable profile and account columns. Username and email
// are never rewritten here.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()
	res := r.db.WithContext(ctx).
		Model(user).
		Select("display_name", "bio", "location", "website", "avatar_url", "membership", "password", "is_admin", "is_active").
		Updates(user)
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	return storageError(err)
}

func (r *userRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	defer observability.TrackQuery("follow", "follows")()
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		followerID, followeeID, time.Now().UTC(),
	).Error
	return storageError(err)
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	defer observability.TrackQuery("unfollow", "follows")()
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
	return storageError(err)
}

func (r *userRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return r.listEdge(ctx, "follows.follower_id", "follows.followee_id", userID, limit, offset)
}

func (r *userRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return r.listEdge(ctx, "follows.followee_id", "follows.follower_id", userID, limit, offset)
}

// listEdge returns the users on the joinColumn side of edges whose
// filterColumn equals userID, most recent first.
func (r *userRepository) listEdge(ctx context.Context, joinColumn, filterColumn string, userID uint, limit, offset int) ([]models.User, error) {
	defer observability.TrackQuery("list_edge", "follows")()
	var users []models.User
	err := r.db.WithContext(ctx).
		Select(userSelect).
		Joins("JOIN follows ON "+joinColumn+" = users.id").
		Where(filterColumn+" = ?", userID).
		Order("follows.created_at DESC, users.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, storageError(err)
	}
	return users, nil
}

package repository

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, postID, userID uint) (models.LikeResult, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return storageError(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, storageError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list_by_user", "posts")()
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, storageError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error
	return total, storageError(err)
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&total).Error
	return total, storageError(err)
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?) AS liked", currentUserID)
	}

	return db.Select(selectQuery + ", false AS liked")
}

func (r *postRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	defer observability.TrackQuery("update", "posts")()
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Delete removes the post together with its like-set, its comments and their
// like-sets in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Blocks until in-flight comment inserts and like toggles on the post
		// commit; later ones find the post gone.
		if err := lockRow(tx, "posts", id, clause.LockingStrengthUpdate, "Post"); err != nil {
			return err
		}
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	return storageError(err)
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (models.LikeResult, error) {
	return toggleLike(ctx, r.db, postLikes, postID, userID)
}

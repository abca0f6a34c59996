package repository

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	ListReplies(ctx context.Context, parentID uint, currentUserID uint) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	DeleteThread(ctx context.Context, id uint) (int64, error)
	ToggleLike(ctx context.Context, commentID, userID uint) (models.LikeResult, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment while holding share locks on its post and parent,
// so neither can be deleted between the check and the insert. A parent on a
// different post is reported as not found.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, "posts", comment.PostID, clause.LockingStrengthShare, "Post"); err != nil {
			return err
		}
		if comment.ParentID != nil {
			var parent models.Comment
			err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
				Select("id", "post_id").
				First(&parent, *comment.ParentID).Error
			if err != nil {
				return lookupError(err, "Comment", *comment.ParentID)
			}
			if parent.PostID != comment.PostID {
				return models.NewNotFoundError("Comment", *comment.ParentID)
			}
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	if constraint, ok := foreignKeyViolation(err); ok {
		if comment.ParentID != nil && (constraint == "" || constraint == "fk_comments_parent") {
			return models.NewNotFoundError("Comment", *comment.ParentID)
		}
		return models.NewNotFoundError("Post", comment.PostID)
	}
	return storageError(err)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	defer observability.TrackQuery("get", "comments")()
	var comment models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&comment, id).Error
	if err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(
	ctx context.Context,
	postID uint,
	limit, offset int,
	currentUserID uint,
) ([]*models.Comment, error) {
	defer observability.TrackQuery("list_by_post", "comments")()
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC, comments.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, storageError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error
	return total, storageError(err)
}

func (r *commentRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("list_by_user", "comments")()
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("comments.user_id = ?", userID).
		Order("comments.created_at DESC, comments.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, storageError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("user_id = ?", userID).Count(&total).Error
	return total, storageError(err)
}

// ListReplies returns the direct replies to parentID, oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, currentUserID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("list_replies", "comments")()
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("comments.parent_id = ?", parentID).
		Order("comments.created_at ASC, comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, storageError(err)
	}
	return comments, nil
}

// applyCommentDetails adds like, reply and liked-by-viewer columns.
func (r *commentRepository) applyCommentDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM comments AS replies WHERE replies.parent_id = comments.id) AS replies_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?) AS liked", currentUserID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	defer observability.TrackQuery("update", "comments")()
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// DeleteThread removes the comment and every transitive reply in a single
// transaction and returns how many comments were removed. The whole tree is
// locked first, so a concurrent reply either lands before the walk and is
// removed with it or fails because its parent is gone.
func (r *commentRepository) DeleteThread(ctx context.Context, id uint) (int64, error) {
	defer observability.TrackQuery("delete_thread", "comments")()
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, "comments", id, clause.LockingStrengthUpdate, "Comment"); err != nil {
			return err
		}

		descendants, err := lockThread(tx, id)
		if err != nil {
			return err
		}

		ids := append(descendants, id)
		removed, err = deleteComments(tx, ids)
		return err
	})
	if err != nil {
		return 0, storageError(err)
	}
	observability.CommentsCascadeDeleted.Add(float64(removed))
	return removed, nil
}

func (r *commentRepository) ToggleLike(ctx context.Context, commentID, userID uint) (models.LikeResult, error) {
	return toggleLike(ctx, r.db, commentLikes, commentID, userID)
}

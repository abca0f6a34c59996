package service

import (
	"context"
	"log/slog"

	"chirp/internal/authz"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

type CreateCommentInput struct {
	Actor   models.Actor
	PostID  uint
	Content string
	// ParentID nests the comment under another comment on the same post.
	ParentID *uint
}

type UpdateCommentInput struct {
	Actor     models.Actor
	CommentID uint
	Content   string
}

type ListCommentsInput struct {
	Page     Page
	ViewerID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// Create attaches a comment to a post. A parent must exist and belong to the
// same post, otherwise the parent is reported as not found.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if !in.Actor.Authenticated() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID, 0)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
	}
	content, err := validation.NormalizeContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		Content:  content,
		PostID:   in.PostID,
		UserID:   in.Actor.ID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentCreated.WithLabelValues("comment").Inc()
	middleware.Logger.InfoContext(ctx, "comment created",
		slog.Uint64("comment_id", uint64(comment.ID)),
		slog.Uint64("post_id", uint64(comment.PostID)),
		slog.Bool("reply", comment.IsReply()))

	return s.commentRepo.GetByID(ctx, comment.ID, in.Actor.ID)
}

// Get returns a comment and its direct replies in chronological order.
func (s *CommentService) Get(ctx context.Context, id, viewerID uint) (*models.Comment, []*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.commentRepo.ListReplies(ctx, id, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return comment, replies, nil
}

// ListByPost returns one page of a post's comments, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint, in ListCommentsInput) ([]*models.Comment, int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, 0, err
	}
	page := in.Page.Normalize()
	comments, err := s.commentRepo.ListByPost(ctx, postID, page.Limit(), page.Offset(), in.ViewerID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commentRepo.CountByPost(ctx, postID)
	return comments, total, err
}

// ListByAuthor returns one page of a user's comments across all posts.
func (s *CommentService) ListByAuthor(ctx context.Context, userID uint, in ListCommentsInput) ([]*models.Comment, int64, error) {
	if s.userRepo != nil {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return nil, 0, err
		}
	}
	page := in.Page.Normalize()
	comments, err := s.commentRepo.ListByUser(ctx, userID, page.Limit(), page.Offset(), in.ViewerID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commentRepo.CountByUser(ctx, userID)
	return comments, total, err
}

// ListReplies returns the direct replies of a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, parentID, viewerID uint) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, parentID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, parentID, viewerID)
}

// Update rewrites a comment. Only the author may edit; privileged actors
// may delete but not reword.
func (s *CommentService) Update(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if !in.Actor.Authenticated() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, in.Actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.IsAuthor(in.Actor, comment) {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	content, err := validation.NormalizeContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.commentRepo.UpdateContent(ctx, comment.ID, content); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID, in.Actor.ID)
}

// Delete removes the comment and every descendant reply. It returns how many
// comments were removed.
func (s *CommentService) Delete(ctx context.Context, actor models.Actor, commentID uint) (int64, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.Delete")
	defer span.End()
	span.AddAttributes(attribute.Int64("comment.id", int64(commentID)))

	if !actor.Authenticated() {
		return 0, models.NewUnauthorizedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID, 0)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	if !authz.CanMutate(actor, comment) {
		return 0, models.NewForbiddenError("You can only delete your own comments")
	}

	removed, err := s.commentRepo.DeleteThread(ctx, commentID)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	span.AddAttributes(attribute.Int64("comments.removed", removed))
	middleware.Logger.InfoContext(ctx, "comment cascade deleted",
		slog.Uint64("comment_id", uint64(commentID)),
		slog.Uint64("post_id", uint64(comment.PostID)),
		slog.Int64("removed", removed))
	return removed, nil
}

// ToggleLike flips the actor's membership in the comment's like-set.
func (s *CommentService) ToggleLike(ctx context.Context, actor models.Actor, commentID uint) (models.LikeResult, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.ToggleLike")
	defer span.End()
	span.AddAttributes(attribute.Int64("comment.id", int64(commentID)))

	if !actor.Authenticated() {
		return models.LikeResult{}, models.NewUnauthorizedError("Authentication required")
	}
	result, err := s.commentRepo.ToggleLike(ctx, commentID, actor.ID)
	if err != nil {
		span.SetError(err)
		return models.LikeResult{}, err
	}
	return result, nil
}

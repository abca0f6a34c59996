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

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	Actor   models.Actor
	Content string
}

type UpdatePostInput struct {
	Actor   models.Actor
	PostID  uint
	Content string
}

type ListPostsInput struct {
	Page     Page
	ViewerID uint
	// AuthorID restricts the listing to one author when non-zero.
	AuthorID uint
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// Create publishes a post for the acting user. A new post has an empty like-set.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if !in.Actor.Authenticated() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content, err := validation.NormalizeContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Content: content,
		UserID:  in.Actor.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentCreated.WithLabelValues("post").Inc()
	middleware.Logger.InfoContext(ctx, "post created",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("author_id", uint64(post.UserID)))

	return s.postRepo.GetByID(ctx, post.ID, in.Actor.ID)
}

func (s *PostService) Get(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

// List returns one page of posts, newest first, and the total count.
func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]*models.Post, int64, error) {
	page := in.Page.Normalize()

	if in.AuthorID != 0 {
		if s.userRepo != nil {
			if _, err := s.userRepo.GetByID(ctx, in.AuthorID); err != nil {
				return nil, 0, err
			}
		}
		posts, err := s.postRepo.ListByUser(ctx, in.AuthorID, page.Limit(), page.Offset(), in.ViewerID)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.postRepo.CountByUser(ctx, in.AuthorID)
		return posts, total, err
	}

	posts, err := s.postRepo.List(ctx, page.Limit(), page.Offset(), in.ViewerID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.postRepo.Count(ctx)
	return posts, total, err
}

// Update rewrites the content of a post the actor may mutate.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if !in.Actor.Authenticated() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.Actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(in.Actor, post) {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	content, err := validation.NormalizeContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.postRepo.UpdateContent(ctx, post.ID, content); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.Actor.ID)
}

// Delete removes a post with its likes and comments.
func (s *PostService) Delete(ctx context.Context, actor models.Actor, postID uint) error {
	span, ctx := observability.NewSpan(ctx, "PostService.Delete")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))

	if !actor.Authenticated() {
		return models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		span.SetError(err)
		return err
	}
	if !authz.CanMutate(actor, post) {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		span.SetError(err)
		return err
	}
	middleware.Logger.InfoContext(ctx, "post deleted",
		slog.Uint64("post_id", uint64(postID)),
		slog.Uint64("by", uint64(actor.ID)),
		slog.Int("comments_removed", post.CommentsCount))
	return nil
}

// ToggleLike flips the actor's membership in the post's like-set.
func (s *PostService) ToggleLike(ctx context.Context, actor models.Actor, postID uint) (models.LikeResult, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ToggleLike")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))

	if !actor.Authenticated() {
		return models.LikeResult{}, models.NewUnauthorizedError("Authentication required")
	}
	result, err := s.postRepo.ToggleLike(ctx, postID, actor.ID)
	if err != nil {
		span.SetError(err)
		return models.LikeResult{}, err
	}
	span.AddAttributes(attribute.Bool("like.liked", result.Liked), attribute.Int("like.count", result.Count))
	return result, nil
}

package service

import (
	"context"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint, uint) (*models.Comment, error)
	listByPostFn    func(context.Context, uint, int, int, uint) ([]*models.Comment, error)
	countByPostFn   func(context.Context, uint) (int64, error)
	listByUserFn    func(context.Context, uint, int, int, uint) ([]*models.Comment, error)
	countByUserFn   func(context.Context, uint) (int64, error)
	listRepliesFn   func(context.Context, uint, uint) ([]*models.Comment, error)
	updateContentFn func(context.Context, uint, string) error
	deleteThreadFn  func(context.Context, uint) (int64, error)
	toggleLikeFn    func(context.Context, uint, uint) (models.LikeResult, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset, currentUserID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	return s.listByUserFn(ctx, userID, limit, offset, currentUserID)
}
func (s *commentRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID, currentUserID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID, currentUserID)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id uint, content string) error {
	return s.updateContentFn(ctx, id, content)
}
func (s *commentRepoStub) DeleteThread(ctx context.Context, id uint) (int64, error) {
	return s.deleteThreadFn(ctx, id)
}
func (s *commentRepoStub) ToggleLike(ctx context.Context, commentID, userID uint) (models.LikeResult, error) {
	return s.toggleLikeFn(ctx, commentID, userID)
}

// noopCommentRepo serves comment 10 on post 1, written by user 1.
func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 11
			return nil
		},
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1, UserID: 1, Content: "first"}, nil
		},
		listByPostFn:    func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Comment, error) { return nil, nil },
		countByPostFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listByUserFn:    func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Comment, error) { return nil, nil },
		countByUserFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listRepliesFn:   func(_ context.Context, _, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateContentFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteThreadFn:  func(_ context.Context, _ uint) (int64, error) { return 1, nil },
		toggleLikeFn: func(_ context.Context, _, _ uint) (models.LikeResult, error) {
			return models.LikeResult{Liked: true, Count: 1}, nil
		},
	}
}

func TestCommentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("missing post", func(t *testing.T) {
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewCommentService(noopCommentRepo(), posts, nil)
		_, err := svc.Create(ctx, CreateCommentInput{Actor: author, PostID: 99, Content: "hi"})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("parent on another post", func(t *testing.T) {
		comments := noopCommentRepo()
		comments.getByIDFn = func(_ context.Context, id, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 2, UserID: 1}, nil
		}
		comments.createFn = func(context.Context, *models.Comment) error {
			t.Fatal("create must not be called")
			return nil
		}
		svc := NewCommentService(comments, noopPostRepo(), nil)
		parent := uint(10)
		_, err := svc.Create(ctx, CreateCommentInput{Actor: author, PostID: 1, Content: "reply", ParentID: &parent})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), nil)
		_, err := svc.Create(ctx, CreateCommentInput{Actor: author, PostID: 1, Content: "   "})
		assertValidationError(t, err)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), nil)
		_, err := svc.Create(ctx, CreateCommentInput{PostID: 1, Content: "hi"})
		assertUnauthorizedError(t, err)
	})

	t.Run("reply on same post", func(t *testing.T) {
		comments := noopCommentRepo()
		var stored *models.Comment
		comments.createFn = func(_ context.Context, c *models.Comment) error {
			c.ID = 11
			stored = c
			return nil
		}
		svc := NewCommentService(comments, noopPostRepo(), nil)
		parent := uint(10)
		_, err := svc.Create(ctx, CreateCommentInput{Actor: stranger, PostID: 1, Content: " reply ", ParentID: &parent})
		require.NoError(t, err)
		require.NotNil(t, stored.ParentID)
		assert.Equal(t, uint(10), *stored.ParentID)
		assert.Equal(t, "reply", stored.Content)
		assert.Equal(t, stranger.ID, stored.UserID)
	})
}

func TestCommentService_Update_AuthorOnly(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopPostRepo(), nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, UpdateCommentInput{Actor: stranger, CommentID: 10, Content: "x"})
	assertForbiddenError(t, err)

	// Privileged actors may delete comments but not rewrite them.
	_, err = svc.Update(ctx, UpdateCommentInput{Actor: moderator, CommentID: 10, Content: "x"})
	assertForbiddenError(t, err)

	_, err = svc.Update(ctx, UpdateCommentInput{Actor: author, CommentID: 10, Content: ""})
	assertValidationError(t, err)

	_, err = svc.Update(ctx, UpdateCommentInput{Actor: author, CommentID: 10, Content: "fixed typo"})
	assert.NoError(t, err)
}

func TestCommentService_Delete(t *testing.T) {
	ctx := context.Background()

	comments := noopCommentRepo()
	comments.deleteThreadFn = func(_ context.Context, id uint) (int64, error) {
		assert.Equal(t, uint(10), id)
		return 3, nil
	}
	svc := NewCommentService(comments, noopPostRepo(), nil)

	_, err := svc.Delete(ctx, stranger, 10)
	assertForbiddenError(t, err)

	removed, err := svc.Delete(ctx, moderator, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	removed, err = svc.Delete(ctx, author, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}

func TestCommentService_ListReplies_MissingParent(t *testing.T) {
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id, _ uint) (*models.Comment, error) {
		return nil, models.NewNotFoundError("Comment", id)
	}
	svc := NewCommentService(comments, noopPostRepo(), nil)

	_, err := svc.ListReplies(context.Background(), 77, 0)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_ToggleLike(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopPostRepo(), nil)

	_, err := svc.ToggleLike(context.Background(), models.Actor{}, 10)
	assertUnauthorizedError(t, err)

	res, err := svc.ToggleLike(context.Background(), stranger, 10)
	require.NoError(t, err)
	assert.True(t, res.Liked)
}

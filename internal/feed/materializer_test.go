package feed

import (
	"encoding/json"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func samplePost() *models.Post {
	return &models.Post{
		ID:            42,
		Content:       "hello world",
		UserID:        1,
		User:          &models.User{ID: 1, Username: "alice", DisplayName: "Alice A"},
		CreatedAt:     fixedTime,
		UpdatedAt:     fixedTime,
		LikesCount:    3,
		CommentsCount: 2,
		Liked:         true,
	}
}

func TestProjectPost(t *testing.T) {
	t.Parallel()

	t.Run("author viewer", func(t *testing.T) {
		v := ProjectPost(samplePost(), 1)
		assert.Equal(t, uint(42), v.ID)
		assert.Equal(t, "alice", v.Author.Handle)
		assert.Equal(t, 3, v.LikeCount)
		assert.Equal(t, 2, v.CommentCount)
		assert.True(t, v.LikedByViewer)
		assert.True(t, v.OwnedByViewer)
	})

	t.Run("other viewer", func(t *testing.T) {
		p := samplePost()
		p.Liked = false
		v := ProjectPost(p, 2)
		assert.False(t, v.LikedByViewer)
		assert.False(t, v.OwnedByViewer)
	})

	t.Run("anonymous viewer never owns or likes", func(t *testing.T) {
		v := ProjectPost(samplePost(), 0)
		assert.False(t, v.LikedByViewer)
		assert.False(t, v.OwnedByViewer)
	})

	t.Run("missing author", func(t *testing.T) {
		p := samplePost()
		p.User = nil
		v := ProjectPost(p, 0)
		assert.Equal(t, DeletedHandle, v.Author.Handle)
		assert.Equal(t, uint(1), v.Author.ID)
	})
}

func TestProjectPostIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := json.Marshal(ProjectPost(samplePost(), 1).Legacy())
	require.NoError(t, err)
	second, err := json.Marshal(ProjectPost(samplePost(), 1).Legacy())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestProjectComment(t *testing.T) {
	t.Parallel()

	parent := uint(7)
	c := &models.Comment{
		ID:           8,
		PostID:       42,
		UserID:       2,
		ParentID:     &parent,
		Content:      "reply",
		User:         &models.User{ID: 2, Username: "bob", DisplayName: "Bob"},
		CreatedAt:    fixedTime,
		LikesCount:   1,
		RepliesCount: 4,
	}

	v := ProjectComment(c, 2)
	require.NotNil(t, v.ParentID)
	assert.Equal(t, uint(7), *v.ParentID)
	assert.Equal(t, 4, v.ReplyCount)
	assert.True(t, v.OwnedByViewer)

	// The view must not alias the model's parent pointer.
	parent = 99
	assert.Equal(t, uint(7), *v.ParentID)
}

func TestLegacyAliasesMirrorCanonicalFields(t *testing.T) {
	t.Parallel()

	v := ProjectPost(samplePost(), 1)
	legacy := v.Legacy()
	assert.Equal(t, v.Content, legacy.Text)
	assert.Equal(t, v.CreatedAt, legacy.Timestamp)
	assert.Equal(t, v.Author, legacy.User)
	assert.Equal(t, v.LikeCount, legacy.LikesCount)
	assert.Equal(t, v.CommentCount, legacy.CommentsCount)
	assert.Equal(t, v.LikedByViewer, legacy.IsLiked)
	assert.Equal(t, v.OwnedByViewer, legacy.IsOwnTweet)

	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"content", "text", "created_at", "timestamp", "author", "user", "isLiked", "isOwnTweet", "like_count", "likesCount"} {
		assert.Contains(t, decoded, key)
	}
}

func TestProjectPostsPreservesOrder(t *testing.T) {
	t.Parallel()

	a, b := samplePost(), samplePost()
	a.ID, b.ID = 2, 1
	views := ProjectPosts([]*models.Post{a, b}, 0)
	require.Len(t, views, 2)
	assert.Equal(t, uint(2), views[0].ID)
	assert.Equal(t, uint(1), views[1].ID)
	assert.Empty(t, ProjectPosts(nil, 0))
}

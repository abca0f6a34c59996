package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUser inserts a user with a unique handle. Overrides run before insert.
func CreateUser(t *testing.T, db *gorm.DB, overrides ...func(*models.User)) *models.User {
	t.Helper()

	n := dbSeq.Add(1)
	handle := fmt.Sprintf("user_%d", n)
	user := &models.User{
		Username:    handle,
		Email:       handle + "@example.com",
		Password:    "not-a-real-hash",
		DisplayName: gofakeit.Name(),
		Membership:  models.MembershipBasic,
		IsActive:    true,
	}
	for _, o := range overrides {
		o(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts a post by author. An empty content gets fake text.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, content string, createdAt ...time.Time) *models.Post {
	t.Helper()

	if content == "" {
		content = ShortText()
	}
	post := &models.Post{UserID: author.ID, Content: content}
	if len(createdAt) > 0 {
		post.CreatedAt = createdAt[0]
	}
	require.NoError(t, db.Omit(clause.Associations).Create(post).Error)
	return post
}

// CreateComment inserts a comment on post, optionally as a reply to parent.
func CreateComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, parent *models.Comment) *models.Comment {
	t.Helper()

	comment := &models.Comment{PostID: post.ID, UserID: author.ID, Content: ShortText()}
	if parent != nil {
		id := parent.ID
		comment.ParentID = &id
	}
	require.NoError(t, db.Omit(clause.Associations).Create(comment).Error)
	return comment
}

// ShortText returns fake content that always fits a post.
func ShortText() string {
	text := strings.TrimSpace(gofakeit.Sentence(8))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		text = "hello"
	}
	return text
}

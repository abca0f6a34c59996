// Package feed turns stored posts and comments into the read models served to
// clients. Projection is pure: it never touches storage, and the same inputs
// always produce the same view.
package feed

import (
	"time"

	"chirp/internal/models"
)

// DeletedHandle is shown when the author record cannot be resolved.
const DeletedHandle = "[deleted]"

// AuthorSummary is the public slice of a user embedded in content views.
type AuthorSummary struct {
	ID          uint   `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// PostView is the canonical projection of a post for one viewer.
type PostView struct {
	ID            uint          `json:"id"`
	Content       string        `json:"content"`
	Author        AuthorSummary `json:"author"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LikeCount     int           `json:"like_count"`
	CommentCount  int           `json:"comment_count"`
	LikedByViewer bool          `json:"liked_by_viewer"`
	OwnedByViewer bool          `json:"owned_by_viewer"`
}

// CommentView is the canonical projection of a comment for one viewer.
type CommentView struct {
	ID            uint          `json:"id"`
	PostID        uint          `json:"post_id"`
	ParentID      *uint         `json:"parent_id"`
	Content       string        `json:"content"`
	Author        AuthorSummary `json:"author"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LikeCount     int           `json:"like_count"`
	ReplyCount    int           `json:"reply_count"`
	LikedByViewer bool          `json:"liked_by_viewer"`
	OwnedByViewer bool          `json:"owned_by_viewer"`
}

// Summarize builds the author summary, substituting a placeholder for a
// missing user.
func Summarize(userID uint, u *models.User) AuthorSummary {
	if u == nil || u.ID == 0 {
		return AuthorSummary{ID: userID, Handle: DeletedHandle}
	}
	return AuthorSummary{
		ID:          u.ID,
		Handle:      u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// ProjectPost materializes p for viewerID (0 for anonymous). Counts and the
// viewer's like membership come from the computed columns loaded with p.
func ProjectPost(p *models.Post, viewerID uint) PostView {
	return PostView{
		ID:            p.ID,
		Content:       p.Content,
		Author:        Summarize(p.UserID, p.User),
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
		LikeCount:     p.LikesCount,
		CommentCount:  p.CommentsCount,
		LikedByViewer: viewerID != 0 && p.Liked,
		OwnedByViewer: viewerID != 0 && viewerID == p.UserID,
	}
}

// ProjectPosts materializes a page of posts, preserving order.
func ProjectPosts(posts []*models.Post, viewerID uint) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, ProjectPost(p, viewerID))
	}
	return views
}

// ProjectComment materializes c for viewerID (0 for anonymous).
func ProjectComment(c *models.Comment, viewerID uint) CommentView {
	var parent *uint
	if c.ParentID != nil {
		id := *c.ParentID
		parent = &id
	}
	return CommentView{
		ID:            c.ID,
		PostID:        c.PostID,
		ParentID:      parent,
		Content:       c.Content,
		Author:        Summarize(c.UserID, c.User),
		CreatedAt:     c.CreatedAt.UTC(),
		UpdatedAt:     c.UpdatedAt.UTC(),
		LikeCount:     c.LikesCount,
		ReplyCount:    c.RepliesCount,
		LikedByViewer: viewerID != 0 && c.Liked,
		OwnedByViewer: viewerID != 0 && viewerID == c.UserID,
	}
}

// ProjectComments materializes a list of comments, preserving order.
func ProjectComments(comments []*models.Comment, viewerID uint) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, ProjectComment(c, viewerID))
	}
	return views
}

package feed

import "time"

// LegacyPost is the post shape older clients read. Every alias is derived
// from the canonical PostView so the two can never drift apart.
type LegacyPost struct {
	PostView
	Text          string        `json:"text"`
	Timestamp     time.Time     `json:"timestamp"`
	User          AuthorSummary `json:"user"`
	LikesCount    int           `json:"likesCount"`
	CommentsCount int           `json:"commentsCount"`
	IsLiked       bool          `json:"isLiked"`
	IsOwnTweet    bool          `json:"isOwnTweet"`
}

// LegacyComment is the comment shape older clients read.
type LegacyComment struct {
	CommentView
	Text       string        `json:"text"`
	Timestamp  time.Time     `json:"timestamp"`
	User       AuthorSummary `json:"user"`
	LikesCount int           `json:"likesCount"`
	IsLiked    bool          `json:"isLiked"`
}

// Legacy adds the compatibility aliases to a post view.
func (v PostView) Legacy() LegacyPost {
	return LegacyPost{
		PostView:      v,
		Text:          v.Content,
		Timestamp:     v.CreatedAt,
		User:          v.Author,
		LikesCount:    v.LikeCount,
		CommentsCount: v.CommentCount,
		IsLiked:       v.LikedByViewer,
		IsOwnTweet:    v.OwnedByViewer,
	}
}

// Legacy adds the compatibility aliases to a comment view.
func (v CommentView) Legacy() LegacyComment {
	return LegacyComment{
		CommentView: v,
		Text:        v.Content,
		Timestamp:   v.CreatedAt,
		User:        v.Author,
		LikesCount:  v.LikeCount,
		IsLiked:     v.LikedByViewer,
	}
}

// LegacyPosts converts a page of post views.
func LegacyPosts(views []PostView) []LegacyPost {
	out := make([]LegacyPost, 0, len(views))
	for _, v := range views {
		out = append(out, v.Legacy())
	}
	return out
}

// LegacyComments converts a list of comment views.
func LegacyComments(views []CommentView) []LegacyComment {
	out := make([]LegacyComment, 0, len(views))
	for _, v := range views {
		out = append(out, v.Legacy())
	}
	return out
}

package models

import (
	"time"
)

// PostLike is one member of a post's like-set. The composite primary key
// guarantees a user appears at most once per post.
type PostLike struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (PostLike) TableName() string {
	return "post_likes"
}

// CommentLike is one member of a comment's like-set.
type CommentLike struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CommentID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Comment   *Comment  `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (CommentLike) TableName() string {
	return "comment_likes"
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

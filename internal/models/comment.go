package models

import (
	"time"
)

// Comment is a reply attached to a post. ParentID, when set, references
// another comment on the same post; deleting a comment deletes its replies.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"size:280;not null" json:"content"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Parent    *Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LikesCount   int  `gorm:"->" json:"likes_count"`
	RepliesCount int  `gorm:"->" json:"replies_count"`
	Liked        bool `gorm:"->" json:"liked"`
}

// OwnerID implements authz.Owned.
func (c *Comment) OwnerID() uint {
	return c.UserID
}

// IsReply reports whether the comment is nested under another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

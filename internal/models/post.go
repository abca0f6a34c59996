package models

import (
	"time"
)

// Post is a short piece of user content, at most MaxContentLength characters.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"size:280;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
}

// OwnerID implements authz.Owned.
func (p *Post) OwnerID() uint {
	return p.UserID
}

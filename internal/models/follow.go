package models

import (
	"time"
)

// Follow is a directed edge of the follow graph: FollowerID follows FolloweeID.
// The graph is stored and listed but never used to filter feeds.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// MembershipTier is the subscription level of a user account.
type MembershipTier string

const (
	MembershipBasic   MembershipTier = "basic"
	MembershipMember  MembershipTier = "member"
	MembershipPremium MembershipTier = "premium"
)

// Valid reports whether t is a known tier.
func (t MembershipTier) Valid() bool {
	switch t {
	case MembershipBasic, MembershipMember, MembershipPremium:
		return true
	}
	return false
}

// User represents an account in the content graph. Username and Email are
// stored lowercase so uniqueness is case-insensitive.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email       string         `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `gorm:"size:80;not null" json:"display_name"`
	Bio         string         `gorm:"size:320" json:"bio"`
	Location    string         `gorm:"size:120" json:"location"`
	Website     string         `json:"website"`
	AvatarURL   string         `json:"avatar_url"`
	Membership  MembershipTier `gorm:"type:varchar(16);not null;default:'basic'" json:"membership"`
	IsAdmin     bool           `gorm:"not null;default:false" json:"is_admin"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// FollowersCount and FollowingCount are computed at query time.
	FollowersCount int `gorm:"->" json:"followers_count"`
	FollowingCount int `gorm:"->" json:"following_count"`
}

// OwnerID implements authz.Owned; a profile is owned by the account itself.
func (u *User) OwnerID() uint {
	return u.ID
}

// Actor returns the acting identity for this user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Handle: u.Username, Privileged: u.IsAdmin}
}

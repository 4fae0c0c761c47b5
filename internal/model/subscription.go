package model

import (
	"time"
)

// Subscription is a directed follower -> followee edge.
type Subscription struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_subscription_pair"`
	FolloweeID uint      `json:"followee_id" gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followee User `json:"-" gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE"`
}
